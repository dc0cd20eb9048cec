package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/exemplar/pkg/core"
)

const (
	// CacheFile is the name of the parse cache inside the system directory.
	CacheFile = "cache.json"
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "exemplar-tmp-"

	cacheVersion = 1
)

// cacheEntry is a validated record remembered for one file.
type cacheEntry struct {
	Record       core.Record `json:"record"`
	LastModified time.Time   `json:"lastModified"`
	Size         int64       `json:"size"`
}

// index is the persisted cache state.
type index struct {
	Version int `json:"version"`
	// Fingerprint identifies the parser and validator settings the entries
	// were produced with. A mismatch invalidates the whole index.
	Fingerprint string                 `json:"fingerprint"`
	Entries     map[string]*cacheEntry `json:"entries"` // Key is relative path (e.g. "c/arduino/blink_2_LEDs.c")
	dirty       bool
	mu          sync.RWMutex
}

// cache skips re-parsing files whose mtime and size did not change.
type cache struct {
	Path        string // Path to {root}/{systemDir}/cache.json
	fingerprint string
	index       *index
}

func newCache(root, systemDir, fingerprint string) *cache {
	return &cache{
		Path:        filepath.Join(root, systemDir, CacheFile),
		fingerprint: fingerprint,
		index: &index{
			Version:     cacheVersion,
			Fingerprint: fingerprint,
			Entries:     make(map[string]*cacheEntry),
		},
	}
}

// Load reads the cache from disk. A missing, corrupted or outdated file
// yields an empty index and no error.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded struct {
		Version     int                    `json:"version"`
		Fingerprint string                 `json:"fingerprint"`
		Entries     map[string]*cacheEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &loaded); err != nil ||
		loaded.Version != cacheVersion ||
		loaded.Fingerprint != c.fingerprint ||
		loaded.Entries == nil {
		c.index.Entries = make(map[string]*cacheEntry)
		c.index.dirty = true
		return nil
	}

	c.index.Entries = loaded.Entries
	c.index.dirty = false
	return nil
}

// Save persists the cache if it changed since the last Load or Save.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns the cached record for relPath if the file is unchanged.
func (c *cache) Get(relPath string, mtime time.Time, size int64) (core.Record, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok || !entry.LastModified.Equal(mtime) || entry.Size != size {
		return core.Record{}, false
	}
	return entry.Record.Clone(), true
}

// Set remembers rec for relPath.
func (c *cache) Set(relPath string, rec core.Record, mtime time.Time, size int64) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[relPath] = &cacheEntry{Record: rec.Clone(), LastModified: mtime, Size: size}
	c.index.dirty = true
}

// Delete forgets relPath.
func (c *cache) Delete(relPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.index.dirty = true
	}
}

// Prune removes entries that are not in keep.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for path := range c.index.Entries {
		if !keep[path] {
			delete(c.index.Entries, path)
			c.index.dirty = true
		}
	}
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

// writeFileAtomic writes data next to filename and renames it into place, so
// readers never observe a partially written cache.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
