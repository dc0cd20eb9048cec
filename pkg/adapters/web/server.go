// Package web serves a catalog over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/exemplar/pkg/adapters/fs"
	"github.com/aretw0/exemplar/pkg/catalog"
	"github.com/aretw0/exemplar/pkg/core"
	"github.com/aretw0/exemplar/pkg/query"
)

// Loader builds a catalog for a language other than the served one.
type Loader func(ctx context.Context, lang string) (*catalog.Catalog, fs.Report, error)

// Config holds the configuration for the HTTP surface.
type Config struct {
	// Catalog is the live catalog answering every request.
	Catalog *catalog.Catalog
	// Lang is the language Catalog was built for. Defaults to "en".
	Lang string
	// Report returns the errors of the scan that produced Catalog. Optional.
	Report func() fs.Report
	// Loader answers /examples.json for other languages. Optional; without it
	// the live catalog is served for every language.
	Loader Loader
	Logger *slog.Logger
}

// Server exposes read-only catalog endpoints.
type Server struct {
	config Config
	query  *query.Query
	logger *slog.Logger
	router chi.Router
}

var langPattern = regexp.MustCompile(`^[a-z]{2}$`)

// New creates a Server.
func New(config Config) (*Server, error) {
	if config.Catalog == nil {
		return nil, errors.New("web server needs a catalog")
	}
	if config.Lang == "" {
		config.Lang = fs.DefaultLang
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		config: config,
		query:  query.New(config.Catalog),
		logger: logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/examples.json", s.handleExamples)
	r.Get("/examples/*", s.handleExample)
	r.Get("/tags", s.handleTags)
	r.Get("/tags/{tag}", s.handleTag)
	r.Get("/platforms", s.handlePlatforms)
	r.Get("/platforms/{platform}", s.handlePlatform)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving catalog", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// examplesPayload is the /examples.json body.
type examplesPayload struct {
	Examples []example   `json:"examples"`
	Tags     []string    `json:"tags"`
	Errors   []fileError `json:"errors"`
}

// example is a record as listed by /examples.json, where the path relative
// to the corpus root is keyed "origin".
type example struct {
	core.Record
	Origin string `json:"origin"`
}

type fileError struct {
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.config.Lang
	}
	if !langPattern.MatchString(lang) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid language %q", lang))
		return
	}

	cat := s.config.Catalog
	var report fs.Report
	if s.config.Report != nil {
		report = s.config.Report()
	}

	if lang != s.config.Lang && s.config.Loader != nil {
		var err error
		cat, report, err = s.config.Loader(r.Context(), lang)
		if err != nil {
			s.logger.Error("failed to load catalog", "lang", lang, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	q := query.New(cat)
	payload := examplesPayload{
		Examples: []example{},
		Tags:     q.Tags(),
		Errors:   make([]fileError, 0, len(report.Errors)),
	}
	for rec := range q.All() {
		payload.Examples = append(payload.Examples, example{Record: rec, Origin: rec.ID})
	}
	for _, fe := range report.Errors {
		payload.Errors = append(payload.Errors, fileError{Origin: fe.Origin, Reason: fe.Err.Error()})
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: payload})
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	rec, err := s.query.Get(chi.URLParam(r, "*"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.query.Tags())
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.Collect(s.query.ByTag(chi.URLParam(r, "tag"))))
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.query.Platforms())
}

func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.Collect(s.query.ByPlatform(chi.URLParam(r, "platform"))))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
