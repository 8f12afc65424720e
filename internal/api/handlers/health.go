package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ecg-pomodoro/backend/pkg/database"
)

// DBHealthChecker is satisfied by *database.DB
type DBHealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler reports service and dependency status
type HealthHandler struct {
	service string
	method  string
	db      DBHealthChecker
}

// NewHealthHandler creates a health handler; db may be nil when the store is disabled
func NewHealthHandler(service, method string, db DBHealthChecker) *HealthHandler {
	return &HealthHandler{service: service, method: method, db: db}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":       "ok",
		"service":      h.service,
		"rpeak_method": h.method,
	}

	if h.db == nil {
		resp["database"] = "disabled"
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	resp["database"] = status
	if err != nil {
		resp["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
