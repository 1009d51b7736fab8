// Package manifest reads a project's Cargo.toml and extracts the subset of
// declared dependency names that are also present in a known-packages set.
package manifest

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// RosDependency is one dependency name from the manifest that matches a
// known interface package.
type RosDependency struct {
	Name string
}

// rawManifest captures only the dependency tables; unknown keys within
// each table (version strings, path/git specifiers, feature lists) are
// tolerated by decoding every value as a toml.Primitive rather than into an
// exhaustive struct.
type rawManifest struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
}

// DiscoverDependencies parses the Cargo manifest at manifestPath and
// returns the names declared in its [dependencies], [build-dependencies]
// and [dev-dependencies] tables that are also present in knownPackages.
// The file is decoded as a whole: a TOML syntax error anywhere in it,
// inside or outside the dependency tables, returns an error and no names.
func DiscoverDependencies(manifestPath string, knownPackages map[string]bool) ([]RosDependency, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, rosidlerr.IOError(manifestPath, err)
	}

	var raw rawManifest
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, rosidlerr.ConfigError("failed to parse Cargo manifest", err)
	}

	seen := map[string]bool{}
	var deps []RosDependency
	addAll := func(table map[string]toml.Primitive) {
		for name := range table {
			if knownPackages[name] && !seen[name] {
				seen[name] = true
				deps = append(deps, RosDependency{Name: name})
			}
		}
	}
	addAll(raw.Dependencies)
	addAll(raw.BuildDependencies)
	addAll(raw.DevDependencies)
	return deps, nil
}
