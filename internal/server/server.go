// Package server exposes the casegraph pipeline over HTTP.
//
// The API mirrors the CLI: the same pipeline runner serves both, so layouts,
// caching, and degradation rules are identical regardless of entry point.
// Endpoints live under /api and return JSON except for the export routes,
// which return the rendered artifact directly.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/casegraph/casegraph/pkg/casefile"
	"github.com/casegraph/casegraph/pkg/pipeline"
	"github.com/casegraph/casegraph/pkg/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	requestTimeout    = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// CaseLister lists the backend's investigation cases.
type CaseLister interface {
	ListCases(ctx context.Context) ([]casefile.Case, error)
}

// Config configures the API server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Runner executes the visualization pipeline.
	Runner *pipeline.Runner

	// Cases lists cases from the backend. Usually the same client backing
	// the runner's source.
	Cases CaseLister

	// Store persists layout snapshots. Defaults to an in-memory store.
	Store store.Store

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the casegraph HTTP API server.
type Server struct {
	addr   string
	runner *pipeline.Runner
	cases  CaseLister
	store  store.Store
	logger *log.Logger
}

// New creates a server from the configuration.
func New(cfg Config) *Server {
	s := &Server{
		addr:   cfg.Addr,
		runner: cfg.Runner,
		cases:  cfg.Cases,
		store:  cfg.Store,
		logger: cfg.Logger,
	}
	if s.addr == "" {
		s.addr = ":8080"
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cases", s.handleListCases)

		r.Route("/cases/{caseID}", func(r chi.Router) {
			r.Get("/network", s.handleNetwork)
			r.Get("/layout", s.handleLayout)
			r.Get("/export.dot", s.handleExport(pipeline.FormatDOT, "text/vnd.graphviz"))
			r.Get("/export.svg", s.handleExport(pipeline.FormatSVG, "image/svg+xml"))

			r.Route("/snapshots", func(r chi.Router) {
				r.Post("/", s.handleCreateSnapshot)
				r.Get("/", s.handleListSnapshots)
				r.Get("/latest", s.handleLatestSnapshot)
			})
		})

		r.Get("/snapshots/{snapshotID}", s.handleGetSnapshot)
	})

	return r
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
