package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fleetsync/internal/models"
)

// FleetSummarizer aggregates the record store.
type FleetSummarizer interface {
	FleetSummary(ctx context.Context) (*models.FleetSummary, error)
}

// SummaryHandler serves fleet-wide aggregate statistics.
type SummaryHandler struct {
	records FleetSummarizer
	logger  *zap.Logger
}

// NewSummaryHandler returns handler.
func NewSummaryHandler(records FleetSummarizer, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{records: records, logger: logger}
}

// ServeHTTP handles GET /api/v1/fleet/summary.
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	summary, err := h.records.FleetSummary(r.Context())
	if err != nil {
		h.logger.Error("fleet summary failed", zap.Error(err))
		http.Error(w, "failed to compute fleet summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
