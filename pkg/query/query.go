// Package query is the read-only façade over a catalog.
//
// Sequences are lazy: the snapshot they iterate is taken when iteration
// starts, not when the sequence is created. Ranging over the same sequence
// twice therefore takes two snapshots, each internally consistent.
package query

import (
	"fmt"
	"iter"
	"slices"

	"github.com/aretw0/exemplar/pkg/catalog"
	"github.com/aretw0/exemplar/pkg/core"
)

// Query answers lookups against one catalog.
type Query struct {
	cat *catalog.Catalog
}

// New creates a Query over cat.
func New(cat *catalog.Catalog) *Query {
	return &Query{cat: cat}
}

// Get returns the record with id or an error matching core.ErrNotFound.
func (q *Query) Get(id string) (core.Record, error) {
	rec, ok := q.cat.Lookup(id)
	if !ok {
		return core.Record{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return rec, nil
}

// ByTag yields the records carrying tag in insertion order.
func (q *Query) ByTag(tag string) iter.Seq[core.Record] {
	return lazy(func() []core.Record { return q.cat.WithTag(tag) })
}

// ByPlatform yields the records whose platform is platform in insertion
// order. Records without a platform never match.
func (q *Query) ByPlatform(platform string) iter.Seq[core.Record] {
	return lazy(func() []core.Record { return q.cat.OnPlatform(platform) })
}

// ByContext yields the records whose effective context (platform, else mode)
// is label.
func (q *Query) ByContext(label string) iter.Seq[core.Record] {
	return lazy(func() []core.Record {
		if label == "" {
			return nil
		}
		return q.cat.Filter(func(r core.Record) bool { return r.Context() == label })
	})
}

// All yields every record in insertion order.
func (q *Query) All() iter.Seq[core.Record] {
	return lazy(q.cat.Records)
}

// Tags returns the sorted set of tags in use.
func (q *Query) Tags() []string {
	return q.cat.Tags()
}

// Platforms returns the sorted set of platforms in use.
func (q *Query) Platforms() []string {
	return q.cat.Platforms()
}

// Collect drains seq into a slice. It never returns nil.
func Collect(seq iter.Seq[core.Record]) []core.Record {
	out := slices.Collect(seq)
	if out == nil {
		out = []core.Record{}
	}
	return out
}

func lazy(snapshot func() []core.Record) iter.Seq[core.Record] {
	return func(yield func(core.Record) bool) {
		for _, rec := range snapshot() {
			if !yield(rec) {
				return
			}
		}
	}
}
