//go:build !debug

package ui

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

// TemplatesFS returns the embedded page templates (production: baked into binary).
func TemplatesFS() fs.FS {
	return templatesFS
}
