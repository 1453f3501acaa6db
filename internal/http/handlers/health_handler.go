package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks storage connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service and database readiness.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler returns handler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
