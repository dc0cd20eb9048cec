package catalog

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/exemplar/pkg/core"
)

// checkConsistency asserts that every derived index entry points at a record
// that actually carries the indexed platform or tag, and vice versa.
func checkConsistency(t *testing.T, c *Catalog) {
	t.Helper()
	c.mu.RLock()
	defer c.mu.RUnlock()

	for platform, bucket := range c.byPlatform {
		require.NotEmpty(t, bucket, "empty platform bucket %q", platform)
		for id := range bucket {
			e, ok := c.records[id]
			require.True(t, ok, "platform %q references missing %s", platform, id)
			require.Equal(t, platform, e.rec.Platform)
		}
	}
	for tag, bucket := range c.byTag {
		require.NotEmpty(t, bucket, "empty tag bucket %q", tag)
		for id := range bucket {
			e, ok := c.records[id]
			require.True(t, ok, "tag %q references missing %s", tag, id)
			require.True(t, e.rec.HasTag(tag), "record %s indexed under stale tag %q", id, tag)
		}
	}
	for id, e := range c.records {
		if e.rec.Platform != "" {
			_, ok := c.byPlatform[e.rec.Platform][id]
			require.True(t, ok, "record %s missing from platform index", id)
		}
		for _, tag := range e.rec.Tags {
			_, ok := c.byTag[tag][id]
			require.True(t, ok, "record %s missing from tag %q", id, tag)
		}
	}
}

func ids(recs []core.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestCatalog_IngestAndLookup(t *testing.T) {
	c := New()
	rec := core.Record{ID: "a.c", Title: "A", Platform: "arduino", Tags: []string{"arduino"}, Body: "x"}

	res := c.Ingest(rec)
	assert.Equal(t, OpInsert, res.Op)
	assert.Nil(t, res.Conflict)

	got, ok := c.Lookup("a.c")
	require.True(t, ok)
	assert.True(t, rec.Equal(got))
	assert.Equal(t, 1, c.Len())
	checkConsistency(t, c)
}

func TestCatalog_StoresCopies(t *testing.T) {
	c := New()
	rec := core.Record{ID: "a", Title: "A", Tags: []string{"x"}}
	c.Ingest(rec)

	rec.Tags[0] = "mutated"
	got, _ := c.Lookup("a")
	assert.Equal(t, []string{"x"}, got.Tags)

	got.Tags[0] = "mutated again"
	again, _ := c.Lookup("a")
	assert.Equal(t, []string{"x"}, again.Tags)
	checkConsistency(t, c)
}

func TestCatalog_ReplaceRemovesStaleMembership(t *testing.T) {
	c := New()
	c.Ingest(core.Record{ID: "a", Title: "A", Platform: "arduino", Tags: []string{"old1", "old2", "shared"}})
	c.Ingest(core.Record{ID: "b", Title: "B", Tags: []string{"shared"}})

	res := c.Ingest(core.Record{ID: "a", Title: "A2", Platform: "esp32", Tags: []string{"new", "shared"}})
	assert.Equal(t, OpReplace, res.Op)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, "a", res.Conflict.ID)
	assert.Equal(t, "A", res.Conflict.Previous.Title)

	assert.Empty(t, c.WithTag("old1"))
	assert.Empty(t, c.WithTag("old2"))
	assert.Empty(t, c.OnPlatform("arduino"))
	assert.Equal(t, []string{"a"}, ids(c.WithTag("new")))
	assert.Equal(t, []string{"a"}, ids(c.OnPlatform("esp32")))
	assert.Equal(t, []string{"a", "b"}, ids(c.WithTag("shared")))
	assert.Equal(t, []string{"esp32"}, c.Platforms())
	assert.Equal(t, []string{"new", "shared"}, c.Tags())
	assert.Equal(t, 2, c.Len())
	checkConsistency(t, c)
}

func TestCatalog_ReplaceKeepsPosition(t *testing.T) {
	c := New()
	c.Ingest(core.Record{ID: "a", Title: "A", Tags: []string{"t"}})
	c.Ingest(core.Record{ID: "b", Title: "B", Tags: []string{"t"}})
	c.Ingest(core.Record{ID: "a", Title: "A2", Tags: []string{"t"}})

	assert.Equal(t, []string{"a", "b"}, c.IDs())

	// remove + ingest is a fresh insert at the end
	require.True(t, c.Remove("a"))
	c.Ingest(core.Record{ID: "a", Title: "A3", Tags: []string{"t"}})
	assert.Equal(t, []string{"b", "a"}, ids(c.WithTag("t")))
}

func TestCatalog_Remove(t *testing.T) {
	c := New()
	c.Ingest(core.Record{ID: "a", Title: "A", Platform: "p", Tags: []string{"x", "y"}})

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"), "second remove must be a no-op")
	assert.False(t, c.Remove("never"))

	_, ok := c.Lookup("a")
	assert.False(t, ok)
	assert.Empty(t, c.Tags())
	assert.Empty(t, c.Platforms())
	assert.Zero(t, c.Len())
	checkConsistency(t, c)
}

func TestCatalog_UnknownKeysAreEmpty(t *testing.T) {
	c := New()
	c.Ingest(core.Record{ID: "a", Title: "A", Mode: "unix", Tags: []string{"plain"}})

	assert.Empty(t, c.WithTag("nope"))
	assert.Empty(t, c.OnPlatform("nope"))
	assert.Empty(t, c.OnPlatform(""), "absence of platform is not a wildcard")
	assert.Empty(t, c.OnPlatform("unix"), "mode does not feed the platform index")
}

func TestCatalog_Filter(t *testing.T) {
	c := New()
	c.Ingest(core.Record{ID: "a", Title: "A", Platform: "arduino", Tags: []string{"t"}})
	c.Ingest(core.Record{ID: "b", Title: "B", Mode: "arduino", Tags: []string{"t"}})
	c.Ingest(core.Record{ID: "c", Title: "C", Mode: "unix", Tags: []string{"t"}})

	got := c.Filter(func(r core.Record) bool { return r.Context() == "arduino" })
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestCatalog_Subscribe(t *testing.T) {
	c := New()
	events, cancel := c.Subscribe(10)

	c.Ingest(core.Record{ID: "a", Title: "A", Tags: []string{"t"}})
	c.Ingest(core.Record{ID: "a", Title: "A2", Tags: []string{"t"}})
	c.Remove("a")
	c.Remove("a")

	want := []core.EventType{core.EventCreate, core.EventModify, core.EventDelete}
	for _, typ := range want {
		select {
		case e := <-events:
			assert.Equal(t, typ, e.Type)
			assert.Equal(t, "a", e.ID)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", typ)
		}
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open, "cancel must close the channel")
}

func TestCatalog_SubscribeDropsWhenFull(t *testing.T) {
	c := New()
	_, cancel := c.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		c.Ingest(core.Record{ID: fmt.Sprintf("r%d", i), Title: "t", Tags: []string{"t"}})
	}

	state := c.State().(CatalogState)
	assert.Equal(t, uint64(4), state.DroppedEvents)
	assert.Equal(t, 1, state.Subscribers)
	assert.Equal(t, 5, state.Records)
	assert.Equal(t, "catalog", c.ComponentType())
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := New(WithName("concurrent"))
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("r%d", i%20)
				c.Ingest(core.Record{
					ID:       id,
					Title:    "t",
					Platform: fmt.Sprintf("p%d", w),
					Tags:     []string{fmt.Sprintf("w%d", w), fmt.Sprintf("i%d", i%3)},
				})
				if i%7 == 0 {
					c.Remove(id)
				}
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for _, rec := range c.WithTag("i1") {
					assert.True(t, rec.HasTag("i1"))
				}
				for _, rec := range c.OnPlatform("p0") {
					assert.Equal(t, "p0", rec.Platform)
				}
				_ = c.Records()
				_ = c.Tags()
			}
		}()
	}

	wg.Wait()
	checkConsistency(t, c)
}
