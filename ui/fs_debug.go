//go:build debug

package ui

import (
	"io/fs"
	"os"
)

// TemplatesFS returns a live filesystem rooted at ui/ (debug: reads from disk).
// Template edits show up on the next request without recompiling Go.
func TemplatesFS() fs.FS {
	return os.DirFS("ui")
}
