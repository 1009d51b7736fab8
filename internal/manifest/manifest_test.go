package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func names(deps []RosDependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
	}
	sort.Strings(out)
	return out
}

func TestDiscoverDependenciesFiltersToKnownPackages(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "my_pkg"
version = "0.1.0"

[dependencies]
geometry_msgs = "*"
serde = "1.0"

[build-dependencies]
std_msgs = { path = "../std_msgs" }
`)
	known := map[string]bool{"geometry_msgs": true, "std_msgs": true}
	deps, err := DiscoverDependencies(path, known)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := names(deps)
	if len(got) != 2 || got[0] != "geometry_msgs" || got[1] != "std_msgs" {
		t.Fatalf("unexpected deps: %v", got)
	}
}

func TestDiscoverDependenciesDeduplicatesAcrossTables(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[dependencies]
geometry_msgs = "*"

[dev-dependencies]
geometry_msgs = "*"
`)
	deps, err := DiscoverDependencies(path, map[string]bool{"geometry_msgs": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("expected deduplication, got %v", deps)
	}
}

func TestDiscoverDependenciesIgnoresUnknownDependencies(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[dependencies]
serde = "1.0"
`)
	deps, err := DiscoverDependencies(path, map[string]bool{"geometry_msgs": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 0 {
		t.Fatalf("expected no known deps, got %v", deps)
	}
}
