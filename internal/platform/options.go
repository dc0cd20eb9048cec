package platform

import (
	"log/slog"

	"github.com/aretw0/exemplar/pkg/catalog"
	"github.com/aretw0/exemplar/pkg/schema"
)

// options holds the internal configuration for an Engine.
type options struct {
	logger      *slog.Logger
	lang        string
	include     []string
	exclude     []string
	systemDir   string
	cache       bool
	decoder     string
	policy      schema.Policy
	eventBuffer int
	name        string
}

// Option defines a functional option for configuring an Engine.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		lang:        "en",
		decoder:     "json",
		policy:      schema.DefaultPolicy(),
		eventBuffer: catalog.DefaultEventBuffer,
		name:        "examples",
	}
}

// WithLogger sets the logger for the engine and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLang selects the language variant to index. Defaults to "en".
func WithLang(lang string) Option {
	return func(o *options) {
		if lang != "" {
			o.lang = lang
		}
	}
}

// WithInclude restricts scanning to files matching any of the doublestar patterns.
func WithInclude(patterns ...string) Option {
	return func(o *options) {
		o.include = append(o.include, patterns...)
	}
}

// WithExclude skips files matching any of the doublestar patterns.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithSystemDir sets the hidden directory holding the parse cache.
// Defaults to ".exemplar".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithCache enables the persistent parse cache.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}

// WithDecoder selects the header payload decoder by name ("json" or "yaml").
func WithDecoder(name string) Option {
	return func(o *options) {
		o.decoder = name
	}
}

// WithDefaultTag sets the tag synthesized for records without tags.
func WithDefaultTag(tag string) Option {
	return func(o *options) {
		o.policy.DefaultTag = tag
	}
}

// WithRequireTags rejects records without tags instead of synthesizing one.
func WithRequireTags(required bool) Option {
	return func(o *options) {
		o.policy.RequireTags = required
	}
}

// WithEventBuffer sets the buffer of event subscriptions opened by the engine.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.eventBuffer = size
		}
	}
}

// WithName names the engine's catalog in introspection output.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
