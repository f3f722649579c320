// Package server provides the HTTP API for tabiji.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/tabiji/internal/config"
	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/internal/storage"
	"github.com/hyperjump/tabiji/pkg/metrics"
)

// Recommender answers the two recommendation queries.
type Recommender interface {
	Events(ctx context.Context, query string) ([]models.Record, bool, error)
	Locations(ctx context.Context, location string) ([]models.Record, error)
	Status() models.Status
}

// Server is the HTTP server for the tabiji API.
type Server struct {
	rec     Recommender
	storage storage.Storage
	config  *config.Config
	metrics *metrics.Manager
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. store and m may be nil.
func NewServer(
	rec Recommender,
	store storage.Storage,
	cfg *config.Config,
	m *metrics.Manager,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		rec:     rec,
		storage: store,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// Router returns the HTTP handler with all middleware and routes installed.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.config.Server.TimeoutSeconds > 0 {
		r.Use(middleware.Timeout(time.Duration(s.config.Server.TimeoutSeconds) * time.Second))
	}
	r.Use(middleware.Compress(5))
	r.Use(s.cors())
	r.Use(s.rateLimit())

	r.Get("/recommend/events", s.handleEvents)
	r.Get("/recommend/locations", s.handleLocations)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
