package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"fleetsync/internal/models"
)

// HistoryLister reads recent ingestion runs.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]models.ProcessingHistory, error)
}

// HistoryHandler serves the processing history.
type HistoryHandler struct {
	history HistoryLister
	logger  *zap.Logger
}

// NewHistoryHandler returns handler.
func NewHistoryHandler(history HistoryLister, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// ServeHTTP handles GET /api/v1/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", zap.Error(err))
		http.Error(w, "failed to query history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.ProcessingHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}
