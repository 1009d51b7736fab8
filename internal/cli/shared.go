package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ros2rust/ros2gen/internal/config"
	"github.com/ros2rust/ros2gen/internal/orchestrator"
)

// commonFlags holds the flags shared by generate and build: they resolve
// the same Options, just with a different BindingsOnly default.
type commonFlags struct {
	projectRoot string
	searchPath  string
	distro      string
	outputDir   string
	verbose     bool
}

func bindCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVar(&f.projectRoot, "project-root", ".", "project root directory")
	cmd.Flags().StringVar(&f.searchPath, "search-path", "", "override AMENT_PREFIX_PATH")
	cmd.Flags().StringVar(&f.distro, "distro", "", "override ROS_DISTRO")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "override the generated bindings directory")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print progress as each workflow step runs")
}

// resolveOptions merges config.Load's result (file + environment) with any
// flags the user passed explicitly, flags taking precedence.
func resolveOptions(f commonFlags, bindingsOnly bool) (orchestrator.Options, error) {
	cfg, err := config.Load(f.projectRoot)
	if err != nil {
		return orchestrator.Options{}, err
	}

	opts := orchestrator.Options{
		ProjectRoot:  f.projectRoot,
		SearchPath:   cfg.SearchPath,
		RosDistro:    cfg.Distro,
		OutputDir:    cfg.OutputDir,
		Verbose:      cfg.Verbose,
		BindingsOnly: bindingsOnly,
		Progress:     os.Stderr,
	}
	if f.searchPath != "" {
		opts.SearchPath = f.searchPath
	}
	if f.distro != "" {
		opts.RosDistro = f.distro
	}
	if f.outputDir != "" {
		opts.OutputDir = f.outputDir
	}
	if f.verbose {
		opts.Verbose = true
	}
	return opts, nil
}
