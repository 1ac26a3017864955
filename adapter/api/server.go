// Package api serves the worker's health and status endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
	"github.com/habitrack/habitrack/pkg/observability"
)

// OutboxStatus reports the relay's counters.
type OutboxStatus interface {
	GetStats() outbox.Stats
}

// HealthReporter runs the registered dependency checks.
type HealthReporter interface {
	GetOverallHealth(ctx context.Context) observability.OverallHealth
}

// MetricsSnapshot exposes recorded counters and gauges.
type MetricsSnapshot interface {
	Snapshot() (counters map[string]int64, gauges map[string]float64)
}

// Server is the worker's HTTP status server.
type Server struct {
	router  chi.Router
	server  *http.Server
	logger  *slog.Logger
	outbox  OutboxStatus
	health  HealthReporter
	metrics MetricsSnapshot
}

// ServerConfig holds configuration for the status server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CheckTimeout time.Duration
}

// DefaultServerConfig returns timeouts suited to a probe endpoint.
func DefaultServerConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		CheckTimeout: 2 * time.Second,
	}
}

// NewServer creates the status server. metrics may be nil.
func NewServer(cfg ServerConfig, outbox OutboxStatus, health HealthReporter, metrics MetricsSnapshot, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		outbox:  outbox,
		health:  health,
		metrics: metrics,
	}
	s.routes(cfg.CheckTimeout)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes(checkTimeout time.Duration) {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.correlate)
	s.router.Use(middleware.Recoverer)
	if checkTimeout > 0 {
		s.router.Use(middleware.Timeout(checkTimeout))
	}

	s.router.Get("/healthz", s.handleLiveness)
	s.router.Get("/readyz", s.handleReadiness)
	s.router.Get("/stats", s.handleStats)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// correlate tags the request context with chi's request id.
func (s *Server) correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = observability.WithCorrelationID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleLiveness answers while the relay loop runs.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	stats := s.outbox.GetStats()
	status, code := "ok", http.StatusOK
	if !stats.IsRunning {
		status, code = "stopped", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":            status,
		"running":           stats.IsRunning,
		"last_processed_at": stats.LastProcessedAt,
	})
}

// handleReadiness runs the dependency checks. Degraded dependencies still
// count as ready.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	health := s.health.GetOverallHealth(r.Context())
	code := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
		s.logger.WarnContext(r.Context(), "readiness check failed", "checks", len(health.Checks))
	}
	writeJSON(w, code, health)
}

type statsResponse struct {
	Outbox   outbox.Stats       `json:"outbox"`
	Counters map[string]int64   `json:"counters,omitempty"`
	Gauges   map[string]float64 `json:"gauges,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{Outbox: s.outbox.GetStats()}
	if s.metrics != nil {
		resp.Counters, resp.Gauges = s.metrics.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Start serves until Shutdown. It returns http.ErrServerClosed after a
// graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("status server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status server")
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
