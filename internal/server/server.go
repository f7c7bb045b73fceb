// Package server exposes the build pipeline over a small HTTP API: trigger
// a build, read the last run record, health check. One build runs at a
// time; concurrent triggers are rejected rather than queued.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mvella/casabuild/internal/pipeline"
	"github.com/mvella/casabuild/internal/store"
)

// BuildFunc runs one build and reports its result.
type BuildFunc func(ctx context.Context) *pipeline.Result

// Config holds server configuration.
type Config struct {
	Addr  string
	Store store.RunStore
	Build BuildFunc
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	store      store.RunStore
	build      BuildFunc

	// buildMu serializes builds; TryLock turns a concurrent trigger into
	// a 409 instead of a queue.
	buildMu sync.Mutex
}

// New creates a new server instance.
func New(cfg Config) *Server {
	s := &Server{
		store: cfg.Store,
		build: cfg.Build,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /build", s.handleBuild)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // builds block the response
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until the context is cancelled or a termination signal
// arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleBuild triggers a build. A build already in flight answers 409.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if !s.buildMu.TryLock() {
		s.errorResponse(w, http.StatusConflict, "build already in progress")
		return
	}
	defer s.buildMu.Unlock()

	res := s.build(r.Context())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"outcome": res.Outcome.String(),
		"items":   res.ItemCount,
		"stats":   res.Stats,
	})
}

// handleStatus returns the last run record, or 404 before the first build.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Last(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		s.errorResponse(w, http.StatusNotFound, "no build has run yet")
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start).Round(time.Millisecond))
	})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("encoding response", "err", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
