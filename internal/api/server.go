package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/newthinker/tasi/internal/api/handler/api"
	"github.com/newthinker/tasi/internal/api/handler/web"
	"github.com/newthinker/tasi/internal/api/middleware"
	"github.com/newthinker/tasi/internal/dashboard"
	"github.com/newthinker/tasi/internal/job"
	"github.com/newthinker/tasi/internal/live"
	"github.com/newthinker/tasi/internal/metrics"
	"github.com/newthinker/tasi/internal/view"
)

// Server represents the HTTP server of the dashboard.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     *chi.Mux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	SessionTTL  time.Duration
	MetricsPath string
}

// Dependencies holds the collaborators the routes are served from.
type Dependencies struct {
	Sessions *dashboard.Sessions
	Renderer *view.Renderer
	Jobs     *job.Store
	// Metrics is optional; without it no metrics are recorded or served.
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Sessions == nil || deps.Renderer == nil || deps.Jobs == nil {
		return nil, errors.New("api: sessions, renderer and jobs are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		router: router,
	}

	s.setupRoutes(cfg, deps)
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.router.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		s.router.Use(metrics.HTTPMiddleware(deps.Metrics))
	}
	s.router.Use(metrics.LoggingMiddleware(s.logger))

	// Web UI routes
	webHandler := web.NewHandler(deps.Sessions, deps.Renderer, cfg.SessionTTL, s.logger)
	webHandler.Routes(s.router)

	var gauge live.Gauge
	if deps.Metrics != nil {
		gauge = deps.Metrics.LiveConnections()
	}
	s.router.Handle("/ws", live.NewHandler(func(r *http.Request) (live.Feed, bool) {
		return webHandler.Session(r)
	}, gauge, s.logger))

	s.router.Get("/api/health", s.handleHealth)

	sessions := apihandler.NewSessionsHandler(deps.Sessions)
	jobs := apihandler.NewJobsHandler(deps.Jobs)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))
		r.Get("/sessions", sessions.List)
		r.Get("/sessions/{id}", sessions.Get)
		r.Get("/jobs", jobs.List)
		r.Get("/jobs/{id}", jobs.Get)
	})

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.Handle(path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
