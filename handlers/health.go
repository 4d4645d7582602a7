package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Details any    `json:"details,omitempty"`
}

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck handles GET /health, no database involved
func (h *HealthHandler) HealthCheck(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: "task-manager"})
}

// ReadinessCheck handles GET /readyz, which includes database connectivity
func (h *HealthHandler) ReadinessCheck(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logRequest(ctx, "error", "Database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:  "degraded",
			Service: "task-manager",
			Details: map[string]any{"db": "unreachable"},
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ready",
		Service: "task-manager",
		Details: map[string]any{"db": "ok"},
	})
}
