package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/exemplar/pkg/adapters/fs"
	lifecycleadapter "github.com/aretw0/exemplar/pkg/adapters/lifecycle"
	"github.com/aretw0/exemplar/pkg/adapters/web"
	"github.com/aretw0/exemplar/pkg/catalog"
	"github.com/aretw0/exemplar/pkg/core"
	"github.com/aretw0/exemplar/pkg/header"
	"github.com/aretw0/exemplar/pkg/query"
	"github.com/aretw0/exemplar/pkg/schema"
)

// Engine wires a corpus directory to a catalog: scanning, querying,
// watching and serving.
type Engine struct {
	Root    string
	Catalog *catalog.Catalog
	Query   *query.Query
	Scanner *fs.Scanner

	opts     *options
	pipeline *core.Pipeline
	logger   *slog.Logger
}

// Open prepares an Engine for the corpus at root. The catalog starts empty;
// call Scan to populate it.
//
//	eng, err := exemplar.Open("./examples", exemplar.WithLang("fr"))
func Open(root string, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", abs)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	decoder, ok := header.DefaultDecoders()[o.decoder]
	if !ok {
		return nil, fmt.Errorf("unknown decoder: %s", o.decoder)
	}

	e := &Engine{
		Root:     abs,
		opts:     o,
		pipeline: core.NewPipeline(header.New(header.WithDecoder(decoder)), schema.New(o.policy)),
		logger:   logger,
	}
	e.Catalog = catalog.New(catalog.WithName(o.name), catalog.WithLogger(logger))
	e.Query = query.New(e.Catalog)

	e.Scanner, err = e.newScanner(o.lang)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) newScanner(lang string) (*fs.Scanner, error) {
	return fs.NewScanner(fs.Config{
		Root:             e.Root,
		Include:          e.opts.include,
		Exclude:          e.opts.exclude,
		Lang:             lang,
		SystemDir:        e.opts.systemDir,
		Cache:            e.opts.cache,
		CacheFingerprint: e.fingerprint(),
		Pipeline:         e.pipeline,
		Logger:           e.logger,
	})
}

// fingerprint identifies the settings that shape cached records.
func (e *Engine) fingerprint() string {
	return fmt.Sprintf("decoder=%s;default_tag=%s;require_tags=%t",
		e.opts.decoder, e.opts.policy.DefaultTag, e.opts.policy.RequireTags)
}

// Lang returns the language variant the engine indexes.
func (e *Engine) Lang() string {
	return e.opts.lang
}

// Scan synchronizes the catalog with the corpus.
func (e *Engine) Scan(ctx context.Context) (fs.Report, error) {
	return e.Scanner.Scan(ctx, e.Catalog)
}

// Load builds a separate catalog of the corpus for lang. The cache is not
// shared with the engine's own scanner.
func (e *Engine) Load(ctx context.Context, lang string) (*catalog.Catalog, fs.Report, error) {
	s, err := fs.NewScanner(fs.Config{
		Root:      e.Root,
		Include:   e.opts.include,
		Exclude:   e.opts.exclude,
		Lang:      lang,
		SystemDir: e.opts.systemDir,
		Pipeline:  e.pipeline,
		Logger:    e.logger,
	})
	if err != nil {
		return nil, fs.Report{}, err
	}
	cat := catalog.New(catalog.WithName(e.opts.name+"-"+lang), catalog.WithLogger(e.logger))
	report, err := s.Scan(ctx, cat)
	if err != nil {
		return nil, report, err
	}
	return cat, report, nil
}

// Watch starts a watcher keeping the catalog in sync with the corpus. Stop it
// with its Stop method or by cancelling ctx.
func (e *Engine) Watch(ctx context.Context, opts ...fs.WatchOption) (*fs.Watcher, error) {
	w, err := fs.NewWatcher(e.Scanner, e.Catalog, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Events returns a lifecycle.Source emitting catalog change events.
func (e *Engine) Events() lifecycle.Source {
	return lifecycleadapter.NewSource(e.Catalog, e.opts.eventBuffer)
}

// Server returns the HTTP surface of the engine.
func (e *Engine) Server() (*web.Server, error) {
	return web.New(web.Config{
		Catalog: e.Catalog,
		Lang:    e.opts.lang,
		Report:  e.Scanner.LastReport,
		Loader:  e.Load,
		Logger:  e.logger,
	})
}
