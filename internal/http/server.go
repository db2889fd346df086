// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendlens/internal/log"
	"spendlens/internal/metrics"
	"spendlens/internal/middleware/ratelimit"
	"spendlens/internal/middleware/security"
	"spendlens/internal/services"
)

// readyTimeout bounds the dependency check behind /readyz.
const readyTimeout = 5 * time.Second

// Server wraps http.Server with the ledger routes and owns the rate limiter.
type Server struct {
	http.Server
	ledger       *services.LedgerService
	ready        func(context.Context) error
	limiter      *ratelimit.Limiter
	logger       *log.Logger
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// ready is consulted by /readyz; nil means always ready.
func NewServer(addr string, ledger *services.LedgerService, ready func(context.Context) error, logger *log.Logger) *Server {
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:  ledger,
		ready:   ready,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:  logger.WithComponent(log.ComponentHTTP),
		started: time.Now(),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleQueryTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Post("/bulk-delete", s.handleBulkDeleteTransactions)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Post("/adjust", s.handleAdjustBudgets)
			r.Post("/report", s.handleExportReport)
			r.Get("/alerts", s.handleAlerts)
			r.Post("/alerts/{id}/dismiss", s.handleDismissAlert)
			r.Get("/templates", s.handleTemplates)
			r.Post("/templates/{id}/apply", s.handleApplyTemplate)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Get("/categories", s.handleCategories)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 while the store cannot be reached.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.ready(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			log.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"checks": map[string]string{"store": "failed: " + err.Error()},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{"store": "ok"},
	})
}
