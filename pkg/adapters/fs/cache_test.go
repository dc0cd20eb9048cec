package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/exemplar/pkg/core"
)

func TestCache_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		tmpDir := t.TempDir()
		c := newCache(tmpDir, ".cache", "v1")

		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)

		mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		jsonContent := `{
			"version": 1,
			"fingerprint": "v1",
			"entries": {
				"c/hello.c": {
					"record": {"id": "c/hello.c", "title": "Hello", "tags": ["plain"]},
					"lastModified": "2024-01-02T03:04:05Z",
					"size": 42
				}
			}
		}`
		os.WriteFile(filepath.Join(cacheDir, CacheFile), []byte(jsonContent), 0644)

		c := newCache(tmpDir, ".cache", "v1")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		rec, ok := c.Get("c/hello.c", mtime, 42)
		if !ok {
			t.Fatal("Expected entry c/hello.c not found")
		}
		if rec.Title != "Hello" {
			t.Errorf("Expected title 'Hello', got '%s'", rec.Title)
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)

		os.WriteFile(filepath.Join(cacheDir, CacheFile), []byte("{ invalid json"), 0644)

		c := newCache(tmpDir, ".cache", "v1")
		// Should not error, but return empty
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if c.Len() != 0 {
			t.Errorf("Expected empty entries after corruption, got %d", c.Len())
		}
	})

	t.Run("Resets on Fingerprint Mismatch", func(t *testing.T) {
		tmpDir := t.TempDir()
		now := time.Now()

		c := newCache(tmpDir, ".cache", "v1")
		c.Set("a.c", core.Record{ID: "a.c", Title: "A"}, now, 1)
		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		other := newCache(tmpDir, ".cache", "v2")
		if err := other.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if other.Len() != 0 {
			t.Errorf("Expected entries to be discarded, got %d", other.Len())
		}
	})
}

func TestCache_Get(t *testing.T) {
	c := newCache(t.TempDir(), ".cache", "")
	mtime := time.Now()
	c.Set("a.c", core.Record{ID: "a.c", Title: "A", Tags: []string{"x"}}, mtime, 10)

	if _, ok := c.Get("a.c", mtime.Add(time.Second), 10); ok {
		t.Error("Expected miss on changed mtime")
	}
	if _, ok := c.Get("a.c", mtime, 11); ok {
		t.Error("Expected miss on changed size")
	}

	rec, ok := c.Get("a.c", mtime, 10)
	if !ok {
		t.Fatal("Expected hit")
	}
	rec.Tags[0] = "mutated"

	again, _ := c.Get("a.c", mtime, 10)
	if again.Tags[0] != "x" {
		t.Errorf("Cached record was mutated through a returned copy: %v", again.Tags)
	}
}

func TestCache_Save(t *testing.T) {
	t.Run("Does Not Save if Not Dirty", func(t *testing.T) {
		tmpDir := t.TempDir()
		c := newCache(tmpDir, ".cache", "v1")

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
			t.Error("Expected cache file not to be created")
		}
	})

	t.Run("Saves and Reloads", func(t *testing.T) {
		tmpDir := t.TempDir()
		mtime := time.Now().Truncate(time.Second)

		c := newCache(tmpDir, ".cache", "v1")
		c.Set("a.c", core.Record{ID: "a.c", Title: "A", Tags: []string{"plain"}}, mtime, 5)
		c.Set("b.c", core.Record{ID: "b.c", Title: "B", Tags: []string{"plain"}}, mtime, 6)

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reloaded := newCache(tmpDir, ".cache", "v1")
		if err := reloaded.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if reloaded.Len() != 2 {
			t.Fatalf("Expected 2 entries, got %d", reloaded.Len())
		}
		if rec, ok := reloaded.Get("b.c", mtime, 6); !ok || rec.Title != "B" {
			t.Errorf("Expected b.c to round-trip, got %+v (hit=%v)", rec, ok)
		}

		entries, _ := os.ReadDir(filepath.Dir(c.Path))
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("Temporary file left behind: %s", e.Name())
			}
		}
	})
}

func TestCache_Prune(t *testing.T) {
	c := newCache(t.TempDir(), ".cache", "")
	now := time.Now()
	c.Set("keep.c", core.Record{ID: "keep.c"}, now, 1)
	c.Set("drop.c", core.Record{ID: "drop.c"}, now, 1)

	c.Prune(map[string]bool{"keep.c": true})

	if c.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", c.Len())
	}
	if _, ok := c.Get("keep.c", now, 1); !ok {
		t.Error("Expected keep.c to survive prune")
	}

	c.Delete("keep.c")
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after delete, got %d", c.Len())
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.json")

	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(target, []byte("new"), 0644); err != nil {
		t.Fatalf("writeFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("Expected 'new', got %q", data)
	}

	if err := writeFileAtomic(filepath.Join(dir, "missing", "out.json"), []byte("x"), 0644); err == nil {
		t.Error("Expected error when target directory does not exist")
	}
}
