// Package runtimesupport ships the fixed Rust runtime support crate that
// every generated package depends on for its wire-level string and
// sequence types. The crate is embedded in the binary and materialized to
// disk once per orchestrator run.
package runtimesupport

import (
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/ros2rust/ros2gen/internal/atomicfile"
	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

//go:embed crate
var crateFS embed.FS

// CrateName is the Cargo package name declared by the embedded runtime
// crate's Cargo.toml.
const CrateName = "rosidl_runtime_rs"

// Write materializes the embedded crate directly in destDir (its manifest
// lands at destDir/Cargo.toml), overwriting any existing copy, and returns
// destDir. It is idempotent: calling it repeatedly across orchestrator runs
// produces byte-identical output.
func Write(destDir string) (string, error) {
	root := destDir
	err := fs.WalkDir(crateFS, "crate", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel("crate", path)
		if err != nil {
			return err
		}
		data, err := crateFS.ReadFile(path)
		if err != nil {
			return err
		}
		return atomicfile.WriteFile(filepath.Join(root, rel), data, 0o644)
	})
	if err != nil {
		return "", rosidlerr.IOError(root, err)
	}
	return root, nil
}
