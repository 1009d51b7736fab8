package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ros2rust/ros2gen/internal/discovery"
	"github.com/ros2rust/ros2gen/internal/orchestrator"
)

func newGenerateCmd() *cobra.Command {
	var f commonFlags
	var workspace bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Rust bindings without invoking the build tool",
		Long: `Discovers installed interface packages, regenerates any that are stale
relative to the project's cached checksums, and patches the project's
Cargo configuration — but stops short of running cargo build.

With --workspace, packages are discovered by walking the project root's
source tree instead of scanning the ament search path, for use before
anything has been built and installed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts, err := resolveOptions(f, true)
			if err != nil {
				return err
			}
			if workspace {
				opts.DiscoveryMode = discovery.Workspace
			}
			result, err := orchestrator.Run(context.Background(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d package(s) of %d discovered\n", len(result.Generated), result.Discovered)
			return nil
		},
	}
	bindCommonFlags(cmd, &f)
	cmd.Flags().BoolVar(&workspace, "workspace", false, "discover packages by walking the project's source tree instead of the ament search path")
	return cmd
}
