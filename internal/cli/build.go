package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ros2rust/ros2gen/internal/orchestrator"
)

func newBuildCmd() *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate Rust bindings and run cargo build",
		Long: `Runs the full workflow: discover, generate stale bindings, patch the
project's Cargo configuration, then invoke cargo build in the project
root, inheriting stdio and propagating its exit status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts, err := resolveOptions(f, false)
			if err != nil {
				return err
			}
			result, err := orchestrator.Run(context.Background(), opts)
			if err != nil {
				if result.ExitCode != 0 {
					os.Exit(result.ExitCode)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d package(s) of %d discovered\n", len(result.Generated), result.Discovered)
			return nil
		},
	}
	bindCommonFlags(cmd, &f)
	return cmd
}
