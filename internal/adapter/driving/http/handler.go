// Package httphandler holds the machine-facing HTTP surface (health check and
// metrics scrape) and the middleware shared by every route.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

// Handler serves the health endpoint and, when enabled, the metrics endpoint.
type Handler struct {
	metrics *Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil to disable /metrics.
func NewHandler(metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{metrics: metrics, logger: logger}
}

// RegisterAPIRoutes registers the health route and, if metrics are enabled,
// the Prometheus scrape route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// ApplyMiddleware wraps handler with recovery, metrics (when m is non-nil) and
// request logging, outermost last.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger, m *Metrics) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, handler)
	if m != nil {
		wrapped = metricsMiddleware(m, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
