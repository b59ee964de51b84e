// Package migrations embeds the schema migrations for every supported dialect.
package migrations

import "embed"

// FS holds one directory of numbered migrations per dialect name.
//
//go:embed sqlite postgres mysql sqlserver
var FS embed.FS
