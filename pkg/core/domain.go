// Package core defines the domain types of the example catalog: records,
// decoded header metadata, change events and the error taxonomy.
package core

import (
	"fmt"
	"slices"
)

// Record is the central entity of the domain.
// It represents one example file after its header has been parsed and validated.
type Record struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Platform string   `json:"platform,omitempty" yaml:"platform,omitempty"`
	Mode     string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Tags     []string `json:"tags" yaml:"tags"`
	Lang     string   `json:"lang,omitempty" yaml:"lang,omitempty"`
	Body     string   `json:"source" yaml:"source"`
}

// Context returns the execution context label of the record.
// Platform takes precedence over Mode; an empty result means "generic".
func (r Record) Context() string {
	if r.Platform != "" {
		return r.Platform
	}
	return r.Mode
}

// HasTag reports whether the record carries tag.
func (r Record) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	r.Tags = slices.Clone(r.Tags)
	return r
}

// Equal reports whether two records are identical by value.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID &&
		r.Title == other.Title &&
		r.Platform == other.Platform &&
		r.Mode == other.Mode &&
		r.Lang == other.Lang &&
		r.Body == other.Body &&
		slices.Equal(r.Tags, other.Tags)
}

// EventType represents the type of change in the catalog.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the catalog.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String renders the event as "TYPE id".
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
