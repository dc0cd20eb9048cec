// Package catalog holds validated example records and the derived platform
// and tag indexes used to query them.
//
// A Catalog is an explicitly constructed value; there is no process-wide
// instance. All mutations go through one write lock and every read copies the
// records it returns, so readers always observe a consistent snapshot.
package catalog

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/exemplar/pkg/core"
)

// Op tells whether an ingest inserted a new record or replaced one.
type Op int

const (
	OpInsert Op = iota + 1
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpReplace:
		return "replace"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// IngestResult describes the outcome of Ingest.
type IngestResult struct {
	ID string
	Op Op
	// Conflict is set when an existing record with the same ID was replaced.
	Conflict *core.ConflictWarning
}

type entry struct {
	rec core.Record
	seq uint64
}

type set map[string]struct{}

// Catalog is the authoritative id -> record mapping plus derived indexes.
type Catalog struct {
	name   string
	logger *slog.Logger

	mu         sync.RWMutex
	records    map[string]*entry
	byPlatform map[string]set
	byTag      map[string]set
	nextSeq    uint64

	subs    map[int]chan core.Event
	nextSub int
	dropped uint64
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for replacement and removal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName labels the catalog in logs and introspection output.
func WithName(name string) Option {
	return func(c *Catalog) {
		c.name = name
	}
}

// New creates an empty Catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		name:       "catalog",
		logger:     slog.New(slog.DiscardHandler),
		records:    make(map[string]*entry),
		byPlatform: make(map[string]set),
		byTag:      make(map[string]set),
		subs:       make(map[int]chan core.Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ingest inserts rec or replaces the record with the same ID.
// A replaced record keeps its position in insertion order and loses all of
// its previous platform and tag memberships. rec must already be validated.
func (c *Catalog) Ingest(rec core.Record) IngestResult {
	rec = rec.Clone()

	c.mu.Lock()
	res := IngestResult{ID: rec.ID, Op: OpInsert}
	evType := core.EventCreate

	seq := c.nextSeq
	if old, ok := c.records[rec.ID]; ok {
		c.unindex(old.rec)
		seq = old.seq
		res.Op = OpReplace
		res.Conflict = &core.ConflictWarning{ID: rec.ID, Previous: old.rec.Clone()}
		evType = core.EventModify
	} else {
		c.nextSeq++
	}

	c.records[rec.ID] = &entry{rec: rec, seq: seq}
	c.index(rec)
	c.publishLocked(core.Event{Type: evType, ID: rec.ID, Timestamp: time.Now().Unix()})
	c.mu.Unlock()

	if res.Conflict != nil {
		c.logger.Debug("record replaced", "catalog", c.name, "id", rec.ID)
	}
	return res
}

// Remove deletes the record with id and its index contributions.
// It reports whether a record was removed; removing an unknown id is a no-op.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	old, ok := c.records[id]
	if ok {
		c.unindex(old.rec)
		delete(c.records, id)
		c.publishLocked(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("remove of unknown record ignored", "catalog", c.name, "id", id)
	}
	return ok
}

func (c *Catalog) index(rec core.Record) {
	if rec.Platform != "" {
		add(c.byPlatform, rec.Platform, rec.ID)
	}
	for _, tag := range rec.Tags {
		add(c.byTag, tag, rec.ID)
	}
}

func (c *Catalog) unindex(rec core.Record) {
	if rec.Platform != "" {
		drop(c.byPlatform, rec.Platform, rec.ID)
	}
	for _, tag := range rec.Tags {
		drop(c.byTag, tag, rec.ID)
	}
}

func add(idx map[string]set, key, id string) {
	bucket, ok := idx[key]
	if !ok {
		bucket = make(set)
		idx[key] = bucket
	}
	bucket[id] = struct{}{}
}

// drop removes id from the bucket and deletes emptied buckets so that key
// listings never report keys without records.
func drop(idx map[string]set, key, id string) {
	bucket, ok := idx[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(idx, key)
	}
}

// --- Reads ---

// Lookup returns a copy of the record with id.
func (c *Catalog) Lookup(id string) (core.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.records[id]
	if !ok {
		return core.Record{}, false
	}
	return e.rec.Clone(), true
}

// Records returns copies of all records in insertion order.
func (c *Catalog) Records() []core.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*entry, 0, len(c.records))
	for _, e := range c.records {
		entries = append(entries, e)
	}
	return ordered(entries)
}

// WithTag returns copies of the records carrying tag, in insertion order.
func (c *Catalog) WithTag(tag string) []core.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bucketLocked(c.byTag[tag])
}

// OnPlatform returns copies of the records whose Platform is platform, in
// insertion order. Records without a platform never match.
func (c *Catalog) OnPlatform(platform string) []core.Record {
	if platform == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bucketLocked(c.byPlatform[platform])
}

// Filter returns copies of the records for which keep returns true, in
// insertion order. keep must not call back into the catalog.
func (c *Catalog) Filter(keep func(core.Record) bool) []core.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []*entry
	for _, e := range c.records {
		if keep(e.rec) {
			entries = append(entries, e)
		}
	}
	return ordered(entries)
}

func (c *Catalog) bucketLocked(bucket set) []core.Record {
	if len(bucket) == 0 {
		return nil
	}
	entries := make([]*entry, 0, len(bucket))
	for id := range bucket {
		entries = append(entries, c.records[id])
	}
	return ordered(entries)
}

func ordered(entries []*entry) []core.Record {
	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	out := make([]core.Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec.Clone()
	}
	return out
}

// IDs returns the ids of all records in insertion order.
func (c *Catalog) IDs() []string {
	recs := c.Records()
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}

// Tags returns every tag in use, sorted.
func (c *Catalog) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.byTag)
}

// Platforms returns every platform in use, sorted.
func (c *Catalog) Platforms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.byPlatform)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func sortedKeys(idx map[string]set) []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
