package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != filepath.Join(dir, defaultOutputDir) {
		t.Errorf("unexpected default output dir: %q", cfg.OutputDir)
	}
	if cfg.Verbose {
		t.Errorf("expected verbose to default to false")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := "search_path: \"/opt/ros/humble\"\ndistro: humble\nverbose: true\n"
	if err := os.WriteFile(filepath.Join(dir, ".ros2gen.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SearchPath != "/opt/ros/humble" || cfg.Distro != "humble" || !cfg.Verbose {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadEnvironmentOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := "search_path: \"/opt/ros/humble\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".ros2gen.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AMENT_PREFIX_PATH", "/opt/ros/jazzy")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SearchPath != "/opt/ros/jazzy" {
		t.Fatalf("expected environment variable to take precedence, got %q", cfg.SearchPath)
	}
}
