package catalog

import (
	"github.com/aretw0/introspection"
)

// CatalogState exposes internal state for observability.
type CatalogState struct {
	Name          string   `json:"name"`
	Records       int      `json:"records"`
	Tags          []string `json:"tags"`
	Platforms     []string `json:"platforms"`
	Subscribers   int      `json:"subscribers"`
	DroppedEvents uint64   `json:"dropped_events"`
}

// State implements introspection.Introspectable.
func (c *Catalog) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CatalogState{
		Name:          c.name,
		Records:       len(c.records),
		Tags:          sortedKeys(c.byTag),
		Platforms:     sortedKeys(c.byPlatform),
		Subscribers:   len(c.subs),
		DroppedEvents: c.dropped,
	}
}

// ComponentType implements introspection.Component.
func (c *Catalog) ComponentType() string {
	return "catalog"
}

var _ introspection.Introspectable = (*Catalog)(nil)
var _ introspection.Component = (*Catalog)(nil)
