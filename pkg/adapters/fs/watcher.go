package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/exemplar/pkg/catalog"
)

// DefaultWatchDelay is how long the watcher waits for the tree to settle
// before rescanning.
const DefaultWatchDelay = 100 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// OnScan registers a callback invoked with the changed paths and the report
// after every rescan.
func OnScan(fn func(changed []string, report Report)) WatchOption {
	return func(w *Watcher) {
		w.onScan = fn
	}
}

// OnError registers a callback for watcher and rescan errors.
func OnError(fn func(error)) WatchOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher keeps a catalog in sync with the corpus directory by rescanning
// after filesystem changes. It runs as a lifecycle worker.
type Watcher struct {
	*worker.BaseWorker
	scanner *Scanner
	catalog *catalog.Catalog
	logger  *slog.Logger

	delay   time.Duration
	onScan  func([]string, Report)
	onError func(error)

	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	scans     sync.WaitGroup
}

// NewWatcher creates a watcher for the scanner's root directory.
func NewWatcher(scanner *Scanner, cat *catalog.Catalog, opts ...WatchOption) (*Watcher, error) {
	if scanner.config.Root == "" {
		return nil, errors.New("watching requires a root directory")
	}
	w := &Watcher{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		scanner:    scanner,
		catalog:    cat,
		logger:     scanner.logger,
		delay:      DefaultWatchDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.recursiveAdd(watcher, w.scanner.config.Root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.delay)
	w.scanner.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// recursiveAdd watches dir and every directory below it except .git and the
// system directory.
func (w *Watcher) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(name string) bool {
	return name == ".git" || name == w.scanner.config.SystemDir
}

// relevant maps an fsnotify event to a corpus-relative path, or returns false
// when the event cannot change the catalog.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	rel, err := filepath.Rel(w.scanner.config.Root, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	for dir := filepath.Dir(rel); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		if w.ignoredDir(filepath.Base(dir)) {
			return "", false
		}
	}
	if w.ignoredDir(filepath.Base(rel)) {
		return "", false
	}

	return rel, true
}

// handleEvent watches newly created directories and queues a rescan.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	rel, ok := w.relevant(event)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.recursiveAdd(w.watcher, event.Name); err != nil {
				w.reportError(err)
			}
		} else if !w.scanner.matches(rel) {
			return
		}
	case event.Has(fsnotify.Write):
		if !w.scanner.matches(rel) {
			return
		}
	}
	// Remove and Rename always rescan: the path may have been a directory.

	w.debouncer.add(rel, func(changed []string) {
		w.rescan(ctx, changed)
	})
}

// rescan runs a full scan in a supervised goroutine.
func (w *Watcher) rescan(ctx context.Context, changed []string) {
	w.scans.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.scans.Done()
		report, err := w.scanner.Scan(ctx, w.catalog)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("rescan failed: %w", err)
		}
		w.logger.Info("catalog refreshed",
			"changed", len(changed),
			"records", w.catalog.Len(),
			"errors", len(report.Errors),
		)
		if w.onScan != nil {
			w.onScan(changed, report)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(err)
	}))
}

func (w *Watcher) reportError(err error) {
	w.logger.Error("watcher error", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}

// run is the main event loop for the watcher worker.
func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.scanner.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	w.debouncer.stopAndWait(5 * time.Second)
	w.scans.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(wErr)
		}
	}
}
