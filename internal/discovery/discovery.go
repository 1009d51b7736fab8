// Package discovery locates interface packages (.msg/.srv/.action files),
// either by scanning an ament-style search path of installed packages
// (Scan) or by recursively walking a source-tree workspace (ScanWorkspace).
package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// Interfaces is the sorted, per-kind catalog of interface file stems found
// in a package's share directory.
type Interfaces struct {
	Messages []string
	Services []string
	Actions  []string
}

// HasAny reports whether the package declares at least one interface.
func (i Interfaces) HasAny() bool {
	return len(i.Messages) > 0 || len(i.Services) > 0 || len(i.Actions) > 0
}

// Package is one discovered interface package.
type Package struct {
	Name       string
	ShareDir   string
	Interfaces Interfaces
}

// MessagePath returns the absolute path to a message's .msg file.
func (p Package) MessagePath(name string) string {
	return filepath.Join(p.ShareDir, "msg", name+".msg")
}

// ServicePath returns the absolute path to a service's .srv file.
func (p Package) ServicePath(name string) string {
	return filepath.Join(p.ShareDir, "srv", name+".srv")
}

// ActionPath returns the absolute path to an action's .action file.
func (p Package) ActionPath(name string) string {
	return filepath.Join(p.ShareDir, "action", name+".action")
}

// Index maps package name to Package. Built once per discovery pass and
// treated as immutable thereafter.
type Index map[string]Package

// Mode selects which of Scan or ScanWorkspace a caller uses to build an
// Index.
type Mode int

const (
	// SearchPath scans an ament-style <prefix>/share/* search path. The
	// default, matching how packages are found once installed.
	SearchPath Mode = iota
	// Workspace recursively walks a source-tree workspace root looking
	// for packages laid out directly as <dir>/{msg,srv,action}/*, for
	// use before packages have been built and installed anywhere.
	Workspace
)

// pathListSeparator is ':' on POSIX and ';' on Windows, matching the
// convention of PATH-like environment variables on each platform.
func pathListSeparator() byte {
	if runtime.GOOS == "windows" {
		return ';'
	}
	return ':'
}

// Scan builds a PackageIndex from a colon- (or semicolon-, on Windows)
// separated search path. Empty segments are ignored; nonexistent prefixes
// are skipped (reported via onWarning if non-nil). A package discovered
// under an earlier prefix is never replaced by one discovered under a
// later prefix with the same name.
func Scan(searchPath string, onWarning func(string)) (Index, error) {
	index := Index{}
	sep := string(pathListSeparator())
	for _, prefix := range strings.Split(searchPath, sep) {
		if prefix == "" {
			continue
		}
		shareDir := filepath.Join(prefix, "share")
		entries, err := os.ReadDir(shareDir)
		if err != nil {
			if os.IsNotExist(err) {
				if onWarning != nil {
					onWarning("search path prefix does not exist: " + prefix)
				}
				continue
			}
			return nil, rosidlerr.DiscoveryError(shareDir, err.Error())
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if _, exists := index[name]; exists {
				continue // first-wins: an earlier prefix already claimed this name
			}
			shareSubDir := filepath.Join(shareDir, name)
			pkg, err := packageFromShareDir(name, shareSubDir)
			if err != nil {
				return nil, err
			}
			if pkg.Interfaces.HasAny() {
				index[name] = pkg
			}
		}
	}
	return index, nil
}

// ScanWorkspace recursively walks workspaceRoot looking for interface
// packages laid out directly as <dir>/{msg,srv,action}/*, the source-tree
// shape used before a package is built and installed under share/. It
// skips the workspace's own build/ and install/ output trees, and any
// directory carrying a COLCON_IGNORE marker or a setup.sh install marker,
// the same rules a colcon workspace uses to tell source from output. A
// package name found more than once keeps whichever copy was visited
// first (pre-order, lexical directory-entry order) and reports the
// collision via onWarning.
func ScanWorkspace(workspaceRoot string, onWarning func(string)) (Index, error) {
	index := Index{}
	skip := []string{
		filepath.Join(workspaceRoot, "build"),
		filepath.Join(workspaceRoot, "install"),
	}

	var walk func(dir string) error
	walk = func(dir string) error {
		for _, s := range skip {
			if dir == s || strings.HasPrefix(dir, s+string(filepath.Separator)) {
				return nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "setup.sh")); err == nil {
			return nil
		}
		if _, err := os.Stat(filepath.Join(dir, "COLCON_IGNORE")); err == nil {
			return nil
		}

		name := filepath.Base(dir)
		pkg, err := packageFromShareDir(name, dir)
		if err != nil {
			return err
		}
		if pkg.Interfaces.HasAny() {
			if _, exists := index[name]; exists {
				if onWarning != nil {
					onWarning("duplicate workspace package name, keeping the first found: " + name)
				}
			} else {
				index[name] = pkg
			}
		}

		entries, err := os.ReadDir(dir) // already sorted by filename
		if err != nil {
			return rosidlerr.DiscoveryError(dir, err.Error())
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if err := walk(filepath.Join(dir, entry.Name())); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(workspaceRoot); err != nil {
		return nil, err
	}
	return index, nil
}

func packageFromShareDir(name, shareDir string) (Package, error) {
	messages, err := scanInterfaceFiles(shareDir, "msg", ".msg")
	if err != nil {
		return Package{}, err
	}
	services, err := scanInterfaceFiles(shareDir, "srv", ".srv")
	if err != nil {
		return Package{}, err
	}
	actions, err := scanInterfaceFiles(shareDir, "action", ".action")
	if err != nil {
		return Package{}, err
	}
	return Package{
		Name:     name,
		ShareDir: shareDir,
		Interfaces: Interfaces{
			Messages: messages,
			Services: services,
			Actions:  actions,
		},
	}, nil
}

func scanInterfaceFiles(shareDir, subdir, ext string) ([]string, error) {
	dir := filepath.Join(shareDir, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, rosidlerr.DiscoveryError(dir, err.Error())
	}
	var stems []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		stems = append(stems, strings.TrimSuffix(entry.Name(), ext))
	}
	sort.Strings(stems)
	return stems, nil
}
