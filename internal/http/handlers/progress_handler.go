package handlers

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetsync/internal/progress"
)

// ProgressHandler lets the upload UI poll a run's progress while the ingest
// request is still in flight.
type ProgressHandler struct {
	store  *progress.Store
	logger *zap.Logger
}

// NewProgressHandler returns handler.
func NewProgressHandler(store *progress.Store, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{store: store, logger: logger}
}

// ServeHTTP handles GET /api/v1/ingest/progress?run_id=...
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	update, err := h.store.Get(r.Context(), runID)
	if errors.Is(err, redis.Nil) {
		http.Error(w, "unknown run", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("progress read failed", zap.String("run_id", runID), zap.Error(err))
		http.Error(w, "failed to read progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, update)
}
