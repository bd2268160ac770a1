// Package server exposes the exploration pipeline over HTTP. It is plumbing
// around the conceptmesh façade: request decoding and validation, error
// mapping and routing. All domain behavior lives below it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/conceptmesh"
	"github.com/hupe1980/conceptmesh/logging"
)

// Options configure a Server.
type Options struct {
	// Addr is the listen address.
	Addr string
	// ReadTimeout/WriteTimeout bound request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string
	// Gatherer, when set, serves Prometheus metrics on GET /metrics.
	Gatherer prometheus.Gatherer
	// Logger receives request-level diagnostics.
	Logger logging.Logger
}

// Server wraps the HTTP surface over a ConceptMesh.
type Server struct {
	mesh     *conceptmesh.ConceptMesh
	validate *validator.Validate
	logger   logging.Logger
	http     *http.Server
	router   chi.Router
}

// New constructs a Server over the given mesh.
func New(mesh *conceptmesh.ConceptMesh, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		mesh:     mesh,
		validate: validator.New(),
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/concepts", func(r chi.Router) {
		r.Post("/expand", s.handleExpand)
		r.Get("/{id}", s.handleStatus)
		r.Get("/{id}/results", s.handleResults)
		r.Post("/{id}/pause", s.handlePause)
		r.Post("/{id}/resume", s.handleResume)
	})
	r.Post("/search", s.handleSearch)
	r.Get("/nodes/{id}", s.handleNode)
	r.Get("/nodes/{id}/subgraph", s.handleSubgraph)
	r.Post("/feedback", s.handleFeedback)

	s.router = r
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the routing handler, useful for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts serving until the listener fails or Shutdown is
// called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }
