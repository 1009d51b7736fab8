// Package orchestrator drives the end-to-end workflow: discover installed
// interface packages, diff them against the project's dependency manifest
// and the on-disk cache, generate the stale ones, patch the project's
// local build configuration, and finally hand off to the language build
// tool.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ros2rust/ros2gen/internal/atomicfile"
	"github.com/ros2rust/ros2gen/internal/cache"
	"github.com/ros2rust/ros2gen/internal/codegen/analyze"
	"github.com/ros2rust/ros2gen/internal/codegen/emit"
	"github.com/ros2rust/ros2gen/internal/configpatch"
	"github.com/ros2rust/ros2gen/internal/discovery"
	"github.com/ros2rust/ros2gen/internal/idl/parser"
	"github.com/ros2rust/ros2gen/internal/manifest"
	"github.com/ros2rust/ros2gen/internal/rosidlerr"
	"github.com/ros2rust/ros2gen/internal/runtimesupport"
)

const (
	cacheFileName    = ".ros2gen_cache"
	manifestFileName = "Cargo.toml"
	cargoConfigPath  = ".cargo/config.toml"
)

// Options configures one orchestrator run. Progress is an optional
// io.Writer for verbose one-line-per-step output. DiscoveryMode defaults
// to discovery.SearchPath; setting it to discovery.Workspace discovers
// packages by walking WorkspaceRoot (defaulting to ProjectRoot) instead of
// scanning SearchPath.
type Options struct {
	ProjectRoot   string
	SearchPath    string
	RosDistro     string
	OutputDir     string
	DiscoveryMode discovery.Mode
	WorkspaceRoot string
	Verbose       bool
	BindingsOnly  bool
	Progress      io.Writer
}

// Result summarizes one completed run.
type Result struct {
	Discovered   int
	Generated    []string
	BuildSkipped bool
	ExitCode     int
}

func (o *Options) logf(format string, args ...interface{}) {
	if !o.Verbose || o.Progress == nil {
		return
	}
	fmt.Fprintf(o.Progress, format+"\n", args...)
}

// Run executes the full workflow and returns once the downstream build
// tool (or, in bindings-only mode, the generation step) has finished.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(opts.ProjectRoot, "target", "bindings")
	}

	// 1. Discover packages.
	onWarning := func(warning string) { opts.logf("warning: %s", warning) }
	var index discovery.Index
	var err error
	if opts.DiscoveryMode == discovery.Workspace {
		workspaceRoot := opts.WorkspaceRoot
		if workspaceRoot == "" {
			workspaceRoot = opts.ProjectRoot
		}
		index, err = discovery.ScanWorkspace(workspaceRoot, onWarning)
	} else {
		index, err = discovery.Scan(opts.SearchPath, onWarning)
	}
	if err != nil {
		return Result{}, err
	}
	opts.logf("discovered %d interface packages", len(index))

	knownPackages := make(map[string]bool, len(index))
	for name := range index {
		knownPackages[name] = true
	}

	// 2. Parse project dependencies, filtered to the discovered index.
	manifestPath := filepath.Join(opts.ProjectRoot, manifestFileName)
	deps, err := manifest.DiscoverDependencies(manifestPath, knownPackages)
	if err != nil {
		return Result{}, err
	}
	candidates := make([]discovery.Package, 0, len(deps))
	for _, d := range deps {
		candidates = append(candidates, index[d.Name])
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	// 3. Cache diff.
	cachePath := filepath.Join(opts.ProjectRoot, cacheFileName)
	c, err := cache.Load(cachePath)
	if err != nil {
		opts.logf("warning: %v; starting from an empty cache", err)
		c = cache.New()
	}

	type diffed struct {
		pkg      discovery.Package
		checksum string
	}
	var toGenerate []diffed
	for _, pkg := range candidates {
		checksum, err := cache.ChecksumForPackage(pkg)
		if err != nil {
			return Result{}, err
		}
		if !c.IsValid(pkg.Name, checksum) {
			toGenerate = append(toGenerate, diffed{pkg: pkg, checksum: checksum})
		}
	}
	opts.logf("%d of %d dependency packages are stale", len(toGenerate), len(candidates))

	// 4. Generate, in parallel across package names: each package writes
	// to a disjoint output subtree, so this is embarrassingly parallel.
	runtimeDir := filepath.Join(opts.OutputDir, "_runtime")
	if len(toGenerate) > 0 {
		if _, err := runtimesupport.Write(runtimeDir); err != nil {
			return Result{}, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range toGenerate {
		d := d
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return generatePackage(d.pkg, opts.OutputDir, knownPackages)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// 5. Update cache.
	now := time.Now()
	for _, d := range toGenerate {
		outDir := filepath.Join(opts.OutputDir, d.pkg.Name)
		c.Insert(cache.NewEntry(d.pkg.Name, d.checksum, opts.RosDistro, outDir, now))
	}
	if len(toGenerate) > 0 {
		if err := c.Save(cachePath); err != nil {
			return Result{}, err
		}
	}

	// 6. Patch configuration for every discovered dependency, cached or
	// freshly generated.
	var patches []configpatch.Patch
	for _, pkg := range candidates {
		entry, ok := c.Get(pkg.Name)
		if !ok {
			continue
		}
		patches = append(patches, configpatch.Patch{PackageName: pkg.Name, Path: entry.OutputDir})
	}
	sort.Slice(patches, func(i, j int) bool { return patches[i].PackageName < patches[j].PackageName })
	if len(patches) > 0 {
		configPath := filepath.Join(opts.ProjectRoot, cargoConfigPath)
		if err := configpatch.Apply(configPath, configpatch.DefaultRegistry, patches); err != nil {
			return Result{}, err
		}
	}

	result := Result{Discovered: len(index)}
	for _, d := range toGenerate {
		result.Generated = append(result.Generated, d.pkg.Name)
	}
	sort.Strings(result.Generated)

	// 7. Invoke the build tool, unless running in bindings-only mode.
	if opts.BindingsOnly {
		result.BuildSkipped = true
		return result, nil
	}
	exitCode, err := invokeBuild(ctx, opts)
	result.ExitCode = exitCode
	if err != nil {
		return result, err
	}
	return result, nil
}

// generatePackage reads, parses, and emits every interface file in pkg,
// in sorted file-stem order, then writes the package-wide
// manifest/build-script/root-module once, derived over all of that
// package's interfaces.
func generatePackage(pkg discovery.Package, outputDir string, knownPackages map[string]bool) error {
	destDir := filepath.Join(outputDir, pkg.Name)
	var entries []emit.InterfaceEntry
	var sourceFiles []emit.SourceFile
	deps := map[string]bool{}
	needsLarge := false

	for _, name := range pkg.Interfaces.Messages {
		data, err := os.ReadFile(pkg.MessagePath(name))
		if err != nil {
			return rosidlerr.IOError(pkg.MessagePath(name), err)
		}
		msg, err := parser.ParseMessage(string(data))
		if err != nil {
			return rosidlerr.ParseError("Message", fmt.Sprintf("%s/%s: %v", pkg.Name, name, err))
		}
		generated, err := emit.GenerateMessagePackage(pkg.Name, name, msg, knownPackages)
		if err != nil {
			return err
		}
		sourceFiles = append(sourceFiles, generated.SourceFiles...)
		entries = append(entries, emit.InterfaceEntry{Kind: emit.KindMessage, Camel: name, Snake: snakeOf(generated)})
		mergeDeps(deps, analyze.Dependencies(msg, pkg.Name))
		needsLarge = needsLarge || analyze.NeedsLargeFixedArraySupport(msg)
	}
	for _, name := range pkg.Interfaces.Services {
		data, err := os.ReadFile(pkg.ServicePath(name))
		if err != nil {
			return rosidlerr.IOError(pkg.ServicePath(name), err)
		}
		svc, err := parser.ParseService(string(data))
		if err != nil {
			return rosidlerr.ParseError("Service", fmt.Sprintf("%s/%s: %v", pkg.Name, name, err))
		}
		generated, err := emit.GenerateServicePackage(pkg.Name, name, svc, knownPackages)
		if err != nil {
			return err
		}
		sourceFiles = append(sourceFiles, generated.SourceFiles...)
		entries = append(entries, emit.InterfaceEntry{Kind: emit.KindService, Camel: name, Snake: snakeOf(generated)})
		mergeDeps(deps, analyze.ServiceDependencies(svc, pkg.Name))
		needsLarge = needsLarge || analyze.NeedsLargeFixedArraySupport(svc.Request) || analyze.NeedsLargeFixedArraySupport(svc.Response)
	}
	for _, name := range pkg.Interfaces.Actions {
		data, err := os.ReadFile(pkg.ActionPath(name))
		if err != nil {
			return rosidlerr.IOError(pkg.ActionPath(name), err)
		}
		act, err := parser.ParseAction(string(data))
		if err != nil {
			return rosidlerr.ParseError("Action", fmt.Sprintf("%s/%s: %v", pkg.Name, name, err))
		}
		generated, err := emit.GenerateActionPackage(pkg.Name, name, act, knownPackages)
		if err != nil {
			return err
		}
		sourceFiles = append(sourceFiles, generated.SourceFiles...)
		entries = append(entries, emit.InterfaceEntry{Kind: emit.KindAction, Camel: name, Snake: snakeOf(generated)})
		mergeDeps(deps, analyze.ActionDependencies(act, pkg.Name))
		needsLarge = needsLarge || analyze.NeedsLargeFixedArraySupport(act.Goal) ||
			analyze.NeedsLargeFixedArraySupport(act.Result) || analyze.NeedsLargeFixedArraySupport(act.Feedback)
	}

	manifestText, err := emit.RenderManifest(pkg.Name, deps, needsLarge)
	if err != nil {
		return err
	}
	buildScriptText, err := emit.RenderBuildScript(pkg.Name)
	if err != nil {
		return err
	}
	rootModuleText, err := emit.RenderRootModule(entries)
	if err != nil {
		return err
	}

	writes := make([]emit.SourceFile, 0, len(sourceFiles)+3)
	writes = append(writes, sourceFiles...)
	writes = append(writes,
		emit.SourceFile{Path: manifestFileName, Content: manifestText},
		emit.SourceFile{Path: "build.rs", Content: buildScriptText},
		emit.SourceFile{Path: filepath.Join("src", "lib.rs"), Content: rootModuleText},
	)
	for _, f := range writes {
		full := filepath.Join(destDir, f.Path)
		if err := atomicfile.WriteFile(full, []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// snakeOf recovers the snake_case interface stem from a GeneratedPackage's
// first source file path, which is always src/<kind>/<snake>.rs.
func snakeOf(generated emit.GeneratedPackage) string {
	base := filepath.Base(generated.SourceFiles[0].Path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func mergeDeps(into, from map[string]bool) {
	for k := range from {
		into[k] = true
	}
}

func invokeBuild(ctx context.Context, opts Options) (int, error) {
	args := []string{"build"}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		args = append(args, "--color=always")
	}
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = opts.ProjectRoot
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), rosidlerr.BuildError(exitErr.ExitCode())
	}
	return -1, rosidlerr.IOError("cargo build", err)
}
