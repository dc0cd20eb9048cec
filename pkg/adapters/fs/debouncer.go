package fs

import (
	"slices"
	"sync"
	"time"
)

// debouncer collects changed paths and flushes them once no new change
// arrived for the configured delay.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

// add records path and (re)arms the timer. fn receives the sorted batch.
// Calls after stopAndWait are ignored.
func (d *debouncer) add(path string, fn func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}

	if d.timer != nil && d.timer.Stop() {
		// The stopped timer never ran, release its slot.
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.flush(fn)
	})
}

func (d *debouncer) flush(fn func([]string)) {
	d.mu.Lock()
	if len(d.pending) == 0 || d.stopped {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	slices.Sort(batch)
	fn(batch)
}

// stopAndWait drops pending changes and waits up to timeout for a flush
// already in progress.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
