// Package atomicfile writes files atomically (write-then-rename) so a
// reader never observes a partially written build configuration, runtime
// crate file, manifest, or generated source file.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// WriteFile writes data to path atomically, creating parent directories as
// needed. On POSIX this is a temp-file write followed by os.Rename into
// place.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, perm)
}
