// Package config loads the ambient settings that govern one ros2gen run:
// search path, ROS distribution tag, output directory, and verbosity.
// Precedence is flag > environment variable > config file > default,
// implemented with viper.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// Config is the resolved set of ambient settings for one run.
type Config struct {
	SearchPath string `mapstructure:"search_path"`
	Distro     string `mapstructure:"distro"`
	OutputDir  string `mapstructure:"output_dir"`
	Verbose    bool   `mapstructure:"verbose"`
}

// defaultOutputDir is relative to the project root.
const defaultOutputDir = "target/bindings"

// Load resolves Config for projectRoot, reading an optional
// .ros2gen.yaml file in projectRoot, AMENT_PREFIX_PATH / ROS_DISTRO
// environment variables, and falling back to defaults. Flags are applied
// by the caller afterward, since cobra owns flag parsing: internal/cli
// copies the result into orchestrator.Options and overrides fields there
// with any flags the user set.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".ros2gen")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectRoot)

	v.SetDefault("search_path", "")
	v.SetDefault("distro", "")
	v.SetDefault("output_dir", filepath.Join(projectRoot, defaultOutputDir))
	v.SetDefault("verbose", false)

	if err := v.BindEnv("search_path", "AMENT_PREFIX_PATH"); err != nil {
		return nil, rosidlerr.ConfigError("failed to bind AMENT_PREFIX_PATH", err)
	}
	if err := v.BindEnv("distro", "ROS_DISTRO"); err != nil {
		return nil, rosidlerr.ConfigError("failed to bind ROS_DISTRO", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, rosidlerr.ConfigError("failed to read .ros2gen.yaml", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, rosidlerr.ConfigError("failed to decode configuration", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(projectRoot, defaultOutputDir)
	}
	return &cfg, nil
}
