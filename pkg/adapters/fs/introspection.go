package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// ScannerState exposes internal state for observability.
type ScannerState struct {
	Root          string     `json:"root"`
	SystemDir     string     `json:"system_dir"`
	Lang          string     `json:"lang"`
	Include       []string   `json:"include,omitempty"`
	Exclude       []string   `json:"exclude,omitempty"`
	CacheEnabled  bool       `json:"cache_enabled"`
	CacheSize     int        `json:"cache_size"`
	KnownRecords  int        `json:"known_records"`
	WatcherActive bool       `json:"watcher_active"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
	LastErrors    int        `json:"last_errors"`
}

// State implements introspection.Introspectable.
func (s *Scanner) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ScannerState{
		Root:          s.config.Root,
		SystemDir:     s.config.SystemDir,
		Lang:          s.config.Lang,
		Include:       s.config.Include,
		Exclude:       s.config.Exclude,
		CacheEnabled:  s.cache != nil,
		KnownRecords:  s.knownCount,
		WatcherActive: s.watcherActive,
		LastScan:      s.lastScan,
		LastErrors:    len(s.lastReport.Errors),
	}
	if s.cache != nil {
		state.CacheSize = s.cache.Len()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Scanner) ComponentType() string {
	return "scanner"
}

var _ introspection.Introspectable = (*Scanner)(nil)
var _ introspection.Component = (*Scanner)(nil)

// LastReport returns the report of the most recent completed scan.
func (s *Scanner) LastReport() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

func (s *Scanner) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Scanner) recordScan(report Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastScan = &now
	s.lastReport = report
	s.knownCount = len(s.known)
}
