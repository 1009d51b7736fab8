// Package cache is the persistent, content-hashed record of generated
// packages: one entry per package name, keyed by a checksum over that
// package's IDL file contents.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ros2rust/ros2gen/internal/discovery"
	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// Entry is one package's cache record.
type Entry struct {
	PackageName   string `json:"package_name"`
	Checksum      string `json:"checksum"`
	RosDistro     string `json:"ros_distro,omitempty"`
	PackageVersion string `json:"package_version,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	OutputDir     string `json:"output_dir"`
}

// Cache maps package name to Entry.
type Cache struct {
	entries map[string]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: map[string]Entry{}}
}

// Load reads path, returning an empty cache if the file does not exist.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, rosidlerr.CacheError("failed to read cache file", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, rosidlerr.CacheError("failed to parse cache file", err)
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return &Cache{entries: entries}, nil
}

// Save writes the cache to path atomically: a uniquely named temp file in
// the same directory, then a rename, so a reader never observes a
// partially written cache.
func (c *Cache) Save(path string) error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return rosidlerr.CacheError("failed to serialize cache", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rosidlerr.CacheError("failed to create cache directory", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return rosidlerr.CacheError("failed to write temporary cache file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return rosidlerr.CacheError("failed to rename temporary cache file into place", err)
	}
	return nil
}

// Insert replaces any existing entry with the same PackageName.
func (c *Cache) Insert(e Entry) {
	c.entries[e.PackageName] = e
}

// Remove deletes the entry for name, if any.
func (c *Cache) Remove(name string) {
	delete(c.entries, name)
}

// Get returns the entry for name and whether it exists.
func (c *Cache) Get(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Entries returns all entries sorted by package name for deterministic
// iteration.
func (c *Cache) Entries() []Entry {
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = c.entries[n]
	}
	return out
}

// IsValid reports whether an entry for name exists and its stored checksum
// equals currentChecksum.
func (c *Cache) IsValid(name, currentChecksum string) bool {
	e, ok := c.entries[name]
	return ok && e.Checksum == currentChecksum
}

// ChecksumForPackage hashes the interface files listed in pkg.Interfaces
// (share_dir/{msg,srv,action}/<Name>.<ext>), sorted by path relative to
// share_dir (forward-slash normalized), feeding both the relative path and
// the file's bytes into a SHA-256 hash. Other files in those directories
// are not hashed.
func ChecksumForPackage(pkg discovery.Package) (string, error) {
	type fileRef struct {
		rel  string
		abs  string
	}
	var files []fileRef
	for _, m := range pkg.Interfaces.Messages {
		abs := pkg.MessagePath(m)
		files = append(files, fileRef{rel: "msg/" + m + ".msg", abs: abs})
	}
	for _, s := range pkg.Interfaces.Services {
		abs := pkg.ServicePath(s)
		files = append(files, fileRef{rel: "srv/" + s + ".srv", abs: abs})
	}
	for _, a := range pkg.Interfaces.Actions {
		abs := pkg.ActionPath(a)
		files = append(files, fileRef{rel: "action/" + a + ".action", abs: abs})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	h := sha256.New()
	for _, f := range files {
		data, err := os.ReadFile(f.abs)
		if err != nil {
			return "", rosidlerr.CacheError("failed to read IDL file for checksum", err)
		}
		h.Write([]byte(f.rel))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewEntry builds a cache entry for a freshly generated package.
func NewEntry(packageName, checksum, rosDistro, outputDir string, now time.Time) Entry {
	return Entry{
		PackageName: packageName,
		Checksum:    checksum,
		RosDistro:   rosDistro,
		Timestamp:   now.Unix(),
		OutputDir:   outputDir,
	}
}
