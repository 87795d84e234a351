// Package api exposes the HTTP surface: public report submission and
// subscription endpoints, alert listing, and the admin control plane.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peacewatch/peacewatch/config"
	middlewares "github.com/peacewatch/peacewatch/internal/middleware"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/internal/store"
)

// Notifier is the report fan-out entry point
type Notifier interface {
	Notify(report models.Report)
}

// SchedulerControl toggles the background scrape loop
type SchedulerControl interface {
	Start() bool
	Stop() bool
	IsRunning() bool
}

// Handler handles HTTP requests for the API
type Handler struct {
	store     store.Store
	notifier  Notifier
	scheduler SchedulerControl
	cfg       *config.Config
	version   string
	startTime time.Time

	// publicLimit wraps the unauthenticated POST endpoints
	publicLimit func(http.Handler) http.Handler
}

// NewHandler creates a new API handler
func NewHandler(st store.Store, notifier Notifier, scheduler SchedulerControl, cfg *config.Config, publicLimit func(http.Handler) http.Handler, version string) *Handler {
	if publicLimit == nil {
		publicLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		store:       st,
		notifier:    notifier,
		scheduler:   scheduler,
		cfg:         cfg,
		version:     version,
		startTime:   time.Now(),
		publicLimit: publicLimit,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)
		r.Get("/version", h.versionHandler)

		r.Get("/alerts", h.listAlertsHandler)
		r.Get("/alerts/{id}", h.getAlertHandler)

		r.Get("/reports", h.listReportsHandler)
		r.Get("/reports/{id}", h.getReportHandler)
		r.With(h.publicLimit).Post("/reports", h.createReportHandler)

		r.With(h.publicLimit).Post("/subscriptions", h.createSubscriptionHandler)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middlewares.AdminSecret(h.cfg.Admin.AdminSecret))

		r.Post("/reports/{id}/verify", h.verifyReportHandler)
		r.Post("/reports/{id}/approve", h.approveReportHandler)
		r.Delete("/reports/{id}", h.deleteReportHandler)
		r.Delete("/alerts/{id}", h.deleteAlertHandler)

		r.Get("/scheduler", h.schedulerStatusHandler)
		r.Post("/scheduler/start", h.startSchedulerHandler)
		r.Post("/scheduler/stop", h.stopSchedulerHandler)
	})
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	statusCode := http.StatusOK

	if err := h.store.Health(r.Context()); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, statusCode, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// livenessHandler reports process liveness
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": time.Since(h.startTime).String(),
	})
}

// versionHandler reports build information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"version": h.version,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
