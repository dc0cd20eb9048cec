package exemplar

import (
	"log/slog"

	"github.com/aretw0/exemplar/internal/platform"
	"github.com/aretw0/exemplar/pkg/core"
)

// --- Types ---

// Engine ties a corpus directory to a catalog.
type Engine = platform.Engine

// Record is a validated example.
type Record = core.Record

// --- Configuration ---

// Option defines a functional option for configuring an Engine.
type Option = platform.Option

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithLang selects the language variant to index.
func WithLang(lang string) Option {
	return platform.WithLang(lang)
}

// WithInclude restricts scanning to files matching the doublestar patterns.
func WithInclude(patterns ...string) Option {
	return platform.WithInclude(patterns...)
}

// WithExclude skips files matching the doublestar patterns.
func WithExclude(patterns ...string) Option {
	return platform.WithExclude(patterns...)
}

// WithSystemDir sets the hidden directory holding the parse cache.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithCache enables the persistent parse cache.
func WithCache(enabled bool) Option {
	return platform.WithCache(enabled)
}

// WithDecoder selects the header payload decoder ("json" or "yaml").
func WithDecoder(name string) Option {
	return platform.WithDecoder(name)
}

// WithDefaultTag sets the tag synthesized for records without tags.
func WithDefaultTag(tag string) Option {
	return platform.WithDefaultTag(tag)
}

// WithRequireTags rejects records without tags.
func WithRequireTags(required bool) Option {
	return platform.WithRequireTags(required)
}

// WithEventBuffer sets the buffer size of event subscriptions.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// --- Factory ---

// Open prepares an Engine for the corpus at root.
func Open(root string, opts ...Option) (*Engine, error) {
	return platform.Open(root, opts...)
}

// FindRoot looks upwards from dir for a corpus root.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}
