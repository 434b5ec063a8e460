// Package bundled discovers and parses the standards shipped inside the
// library's read-only asset directory. Resolution is offline: no network
// lookup ever happens.
package bundled

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"adri/domain/core"
	"adri/domain/standard"
)

//go:embed assets/*.yaml
var assets embed.FS

// defaultCacheSize bounds the parsed-standard LRU
const defaultCacheSize = 128

// Metadata identifies a bundled standard without exposing its full document
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
}

// Loader reads bundled standards with an in-process bounded cache.
// Safe for concurrent Load/Exists/List/Metadata.
type Loader struct {
	fsys  fs.FS
	root  string
	mu    sync.Mutex
	cache *lruCache
}

// NewLoader opens the standards embedded in the package
func NewLoader() *Loader {
	return &Loader{
		fsys:  assets,
		root:  "assets",
		cache: newLRUCache(defaultCacheSize),
	}
}

// NewLoaderFromDir opens an on-disk standards directory. Fails when the
// path does not exist or is not a directory.
func NewLoaderFromDir(dir string) (*Loader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrStandardsDirNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", core.ErrStandardsDirNotFound, dir)
	}
	return &Loader{
		fsys:  os.DirFS(dir),
		root:  ".",
		cache: newLRUCache(defaultCacheSize),
	}, nil
}

// Load returns the parsed bundled standard by name (filename stem)
func (l *Loader) Load(name string) (*standard.Standard, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache.get(name); ok {
		return cached.(*standard.Standard), nil
	}

	data, err := fs.ReadFile(l.fsys, path.Join(l.root, name+".yaml"))
	if err != nil {
		return nil, core.NewStandardNotFoundError(name)
	}
	std, err := standard.Parse(data)
	if err != nil {
		return nil, core.NewInvalidStandardError(name, err.Error())
	}

	l.cache.put(name, std)
	return std, nil
}

// List returns the sorted stems of every bundled *.yaml
func (l *Loader) List() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStandardsDirNotFound, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a bundled standard of this name is shipped
func (l *Loader) Exists(name string) bool {
	_, err := fs.Stat(l.fsys, path.Join(l.root, name+".yaml"))
	return err == nil
}

// Metadata lazily loads a standard once and returns its identity
func (l *Loader) Metadata(name string) (*Metadata, error) {
	std, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		ID:          std.Standards.ID,
		Name:        std.Standards.Name,
		Version:     std.Standards.Version,
		Description: std.Standards.Description,
		FilePath:    path.Join(l.root, name+".yaml"),
	}, nil
}
