// Package configpatch idempotently merges generated-package path overrides
// into a project's .cargo/config.toml, under a [patch.<registry>] table.
package configpatch

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ros2rust/ros2gen/internal/atomicfile"
	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// DefaultRegistry is the patch table cargo consults for the default
// registry (crates.io).
const DefaultRegistry = "crates-io"

// Patch is one package-name-to-local-path override.
type Patch struct {
	PackageName string
	Path        string
}

// document is a generic representation of the config file: every
// top-level table keeps its keys and values, and only the patch table for
// registry is merged key-by-key. The whole file is re-encoded on write, so
// comments and the original key order and formatting are not kept.
type document map[string]interface{}

// Apply reads the config file at path (treating a missing file as empty),
// merges patches into [patch.<registry>], and writes the result back
// atomically. A preexisting file with syntactically invalid TOML is
// rejected rather than silently overwritten.
func Apply(path, registry string, patches []Patch) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}

	patchTable, _ := doc["patch"].(map[string]interface{})
	if patchTable == nil {
		patchTable = map[string]interface{}{}
	}
	registryTable, _ := patchTable[registry].(map[string]interface{})
	if registryTable == nil {
		registryTable = map[string]interface{}{}
	}
	for _, p := range patches {
		registryTable[p.PackageName] = map[string]interface{}{"path": p.Path}
	}
	patchTable[registry] = registryTable
	doc["patch"] = patchTable

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return rosidlerr.ConfigError("failed to serialize patched config", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return rosidlerr.ConfigError("failed to write patched config", err)
	}
	return nil
}

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{}, nil
		}
		return nil, rosidlerr.ConfigError("failed to read config file", err)
	}
	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, rosidlerr.ConfigError("config file contains invalid TOML; refusing to overwrite "+filepath.Base(path), err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}
