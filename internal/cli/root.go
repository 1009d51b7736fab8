// Package cli implements the ros2gen command-line surface: thin cobra
// glue over internal/orchestrator. No generation logic lives here.
package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "ros2gen",
	Short: "Generate Rust bindings from ROS 2 interface packages",
	Long: `ros2gen discovers installed ROS 2 interface packages, generates Rust
bindings for the ones a project depends on, and wires them into the
project's Cargo build.

Examples:
  ros2gen generate
  ros2gen build --distro humble`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newBuildCmd())
}
