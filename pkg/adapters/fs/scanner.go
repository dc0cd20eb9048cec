// Package fs discovers example files on a filesystem, feeds them through the
// parse/validate pipeline and keeps a catalog in sync with the directory tree.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/exemplar/pkg/catalog"
	"github.com/aretw0/exemplar/pkg/core"
	"github.com/aretw0/exemplar/pkg/header"
	"github.com/aretw0/exemplar/pkg/schema"
)

const (
	// DefaultSystemDir holds the parse cache and is never scanned.
	DefaultSystemDir = ".exemplar"
	// DefaultLang is the language assumed for files without a language suffix.
	DefaultLang = "en"
)

// DefaultInclude selects example source files by extension. Files such as
// README or LICENSE never reach the parser.
var DefaultInclude = []string{
	"**/*.{c,h,cc,cpp,hpp,ino,py,js,ts,go,java,rs,rb,sh,lua,php,pl,hs,ml,scm,lisp}",
}

// Config holds the configuration for the filesystem scanner.
type Config struct {
	// Root is the corpus directory on disk. Required for the cache and the
	// watcher; optional when FS is set.
	Root string
	// FS overrides the filesystem to scan (e.g. fstest.MapFS). Defaults to os.DirFS(Root).
	FS iofs.FS
	// Include lists doublestar patterns of files to consider. Empty means
	// DefaultInclude; use "**" to consider every file.
	Include []string
	// Exclude lists doublestar patterns of files to skip.
	Exclude []string
	// Lang selects which language variant of an example to index
	// ("key.fr.c" vs "key.c"). Falls back to DefaultLang.
	Lang      string
	SystemDir string
	// Cache enables the persistent parse cache under Root/SystemDir.
	Cache bool
	// CacheFingerprint identifies the pipeline settings; a change invalidates the cache.
	CacheFingerprint string
	Pipeline         *core.Pipeline
	Logger           *slog.Logger
}

// FileError is a per-file failure recorded during a scan.
type FileError struct {
	Origin string // path relative to the corpus root
	Err    error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Origin, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// Report summarizes one scan. Failures never abort a scan; they are collected here.
type Report struct {
	Ingested  []catalog.IngestResult
	Removed   []string
	Errors    []FileError
	Skipped   int // files dropped by language variant selection
	CacheHits int
	Unchanged int // files whose record was already in the catalog as is
}

// Conflicts returns the ingest results that replaced an existing record.
func (r Report) Conflicts() []core.ConflictWarning {
	var out []core.ConflictWarning
	for _, res := range r.Ingested {
		if res.Conflict != nil {
			out = append(out, *res.Conflict)
		}
	}
	return out
}

// Scanner walks a corpus and ingests its examples into a catalog.
// Scans are serialized; a Scanner is safe for concurrent use.
type Scanner struct {
	config Config
	fsys   iofs.FS
	cache  *cache
	logger *slog.Logger

	scanMu sync.Mutex
	known  map[string]bool // ids ingested by this scanner

	mu            sync.RWMutex
	knownCount    int
	watcherActive bool
	lastScan      *time.Time
	lastReport    Report
}

// NewScanner creates a Scanner. It fails on invalid patterns or when neither
// Root nor FS is set.
func NewScanner(config Config) (*Scanner, error) {
	if config.Root == "" && config.FS == nil {
		return nil, errors.New("scanner needs a root directory or a filesystem")
	}
	for _, p := range slices.Concat(config.Include, config.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	if len(config.Include) == 0 {
		config.Include = DefaultInclude
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Lang == "" {
		config.Lang = DefaultLang
	}
	if config.Pipeline == nil {
		config.Pipeline = core.NewPipeline(header.New(), schema.New(schema.DefaultPolicy()))
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsys := config.FS
	if fsys == nil {
		fsys = os.DirFS(config.Root)
	}

	s := &Scanner{
		config: config,
		fsys:   fsys,
		logger: logger,
		known:  make(map[string]bool),
	}

	if config.Cache {
		if config.Root == "" {
			logger.Warn("parse cache disabled: no root directory")
		} else {
			s.cache = newCache(config.Root, config.SystemDir, config.CacheFingerprint)
		}
	}

	return s, nil
}

// candidate is a file selected for ingestion.
type candidate struct {
	relPath string
	lang    string
}

// Scan walks the corpus, ingests every selected file into cat and removes
// records this scanner ingested earlier whose files are gone or no longer
// valid. The returned error is non-nil only when the walk itself fails or ctx
// is cancelled.
//
// Workflow:
//  1. Walk the tree, skipping the system directory and .git, applying include/exclude patterns.
//  2. Pick one language variant per example key.
//  3. For each file: cache hit, or read + parse + validate. Failures go to the report.
//  4. Ingest, then remove stale records and persist the cache.
func (s *Scanner) Scan(ctx context.Context, cat *catalog.Catalog) (Report, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	var report Report

	if s.cache != nil {
		if err := s.cache.Load(); err != nil {
			s.logger.Warn("failed to load parse cache", "error", err)
		}
	}

	files, err := s.collect(ctx)
	if err != nil {
		return report, err
	}
	candidates, skipped := selectVariants(files, s.config.Lang)
	report.Skipped = skipped

	seen := make(map[string]bool, len(candidates))
	completed := false
	defer func() {
		// An interrupted scan may have ingested records already; keep
		// tracking them so a later scan can remove them.
		if !completed {
			for id := range seen {
				s.known[id] = true
			}
		}
	}()
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, hit, err := s.load(c)
		if err != nil {
			report.Errors = append(report.Errors, FileError{Origin: c.relPath, Err: err})
			s.logger.Warn("skipping example", "path", c.relPath, "error", err)
			continue
		}
		if hit {
			report.CacheHits++
		}

		seen[rec.ID] = true
		if existing, ok := cat.Lookup(rec.ID); ok && existing.Equal(rec) {
			report.Unchanged++
			continue
		}
		report.Ingested = append(report.Ingested, cat.Ingest(rec))
	}

	for id := range s.known {
		if !seen[id] && cat.Remove(id) {
			report.Removed = append(report.Removed, id)
		}
	}
	slices.Sort(report.Removed)
	s.known = seen
	completed = true

	if s.cache != nil {
		s.cache.Prune(seen)
		if err := s.cache.Save(); err != nil {
			s.logger.Warn("failed to save parse cache", "error", err)
		}
	}

	s.recordScan(report)
	s.logger.Debug("scan finished",
		"ingested", len(report.Ingested),
		"removed", len(report.Removed),
		"errors", len(report.Errors),
		"cache_hits", report.CacheHits,
	)
	return report, nil
}

// collect returns the sorted relative paths of all files passing the filters.
func (s *Scanner) collect(ctx context.Context) ([]string, error) {
	var files []string
	err := iofs.WalkDir(s.fsys, ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && (d.Name() == ".git" || d.Name() == s.config.SystemDir) {
				return iofs.SkipDir
			}
			return nil
		}
		if s.matches(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// matches applies the include and exclude patterns to a slash-separated
// relative path.
func (s *Scanner) matches(relPath string) bool {
	if !matchAny(s.config.Include, relPath) {
		return false
	}
	return !matchAny(s.config.Exclude, relPath)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// load returns the record for one file, from the cache when possible.
func (s *Scanner) load(c candidate) (core.Record, bool, error) {
	info, err := iofs.Stat(s.fsys, c.relPath)
	if err != nil {
		return core.Record{}, false, err
	}

	if s.cache != nil {
		if rec, ok := s.cache.Get(c.relPath, info.ModTime(), info.Size()); ok {
			return rec, true, nil
		}
	}

	data, err := iofs.ReadFile(s.fsys, c.relPath)
	if err != nil {
		return core.Record{}, false, err
	}

	rec, err := s.config.Pipeline.Load(c.relPath, string(data))
	if err != nil {
		if s.cache != nil {
			s.cache.Delete(c.relPath)
		}
		return core.Record{}, false, err
	}
	rec.Lang = c.lang

	if s.cache != nil {
		s.cache.Set(c.relPath, rec, info.ModTime(), info.Size())
	}
	return rec, false, nil
}

// variantName matches "key.ll.ext" and "key.ext".
var variantName = regexp.MustCompile(`^(.+?)(?:\.([a-z]{2}))?(\.[^.]+)$`)

// splitVariant returns the language-independent key of a file and its language.
func splitVariant(relPath string) (key, lang string) {
	dir, base := path.Split(relPath)
	m := variantName.FindStringSubmatch(base)
	if m == nil {
		return relPath, DefaultLang
	}
	lang = m[2]
	if lang == "" {
		lang = DefaultLang
	}
	return dir + m[1] + m[3], lang
}

// selectVariants keeps, for every example key, the variant in lang, falling
// back to DefaultLang. Keys with neither are dropped and counted.
func selectVariants(files []string, lang string) ([]candidate, int) {
	type variants map[string]string // lang -> relPath
	byKey := make(map[string]variants)
	var keys []string

	for _, f := range files {
		key, l := splitVariant(f)
		v, ok := byKey[key]
		if !ok {
			v = make(variants)
			byKey[key] = v
			keys = append(keys, key)
		}
		v[l] = f
	}

	var out []candidate
	skipped := 0
	for _, key := range keys {
		v := byKey[key]
		switch {
		case v[lang] != "":
			out = append(out, candidate{relPath: v[lang], lang: lang})
			skipped += len(v) - 1
		case v[DefaultLang] != "":
			out = append(out, candidate{relPath: v[DefaultLang], lang: DefaultLang})
			skipped += len(v) - 1
		default:
			skipped += len(v)
		}
	}

	slices.SortFunc(out, func(a, b candidate) int { return strings.Compare(a.relPath, b.relPath) })
	return out, skipped
}
