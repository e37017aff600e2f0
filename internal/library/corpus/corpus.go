// Package corpus carries the authored content library compiled into the
// binary.
package corpus

import (
	"embed"
	"io/fs"
	"os"
	"strings"
)

//go:embed manifest.yaml documents
var embedded embed.FS

// Embedded returns the compiled-in content tree. The manifest sits at its root.
func Embedded() fs.FS { return embedded }

// Open returns the on-disk tree at dir, or the embedded tree when dir is empty.
func Open(dir string) fs.FS {
	if strings.TrimSpace(dir) == "" {
		return embedded
	}
	return os.DirFS(dir)
}
