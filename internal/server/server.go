// Package server exposes mind-map generation, rendering and export over HTTP.
//
// # Routes
//
//	GET  /healthz               build info
//	GET  /metrics               Prometheus metrics
//	POST /api/mindmap           {"topic": ...} -> tree document
//	POST /api/render?format=    tree document -> svg, json, dot or nodelink
//	POST /api/export?format=    tree document -> png or pdf download
//	POST /api/chat              {"session", "mode", "prompt", "image"} -> message
//	POST /api/image             {"prompt": ...} -> image bytes
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with a
// status derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/observability/prom"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// Config wires the server's collaborators. Runner is required; the others
// are optional and disable their routes when nil.
type Config struct {
	Runner    *pipeline.Runner
	Generator chat.Generator
	Metrics   *prom.Metrics
	Logger    *log.Logger

	// Render holds default layout and styling for render and export.
	Render pipeline.Options

	// MaxSessions bounds the in-memory chat sessions (default 256).
	MaxSessions int
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	gen      chat.Generator
	metrics  *prom.Metrics
	logger   *log.Logger
	render   pipeline.Options
	sessions *sessions
	now      func() time.Time
}

// New creates a server from cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		runner:   cfg.Runner,
		gen:      cfg.Generator,
		metrics:  cfg.Metrics,
		logger:   logger,
		render:   cfg.Render,
		sessions: newSessions(cfg.MaxSessions, cfg.Generator, logger),
		now:      time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(echoRequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.observe)
	}

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(maxBodyBytes))
		r.Post("/mindmap", s.mindMap)
		r.Post("/render", s.renderTree)
		r.Post("/export", s.exportTree)
		r.Post("/chat", s.chat)
		r.Post("/image", s.image)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
