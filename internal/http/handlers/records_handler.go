package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fleetsync/internal/models"
)

const defaultQueryLimit = 1000

// RecordQuerier reads denormalized telematics records.
type RecordQuerier interface {
	Query(ctx context.Context, q models.RecordQuery) ([]models.TelematicsRecord, error)
}

// RecordsHandler serves filtered record reads for the dashboard layer.
type RecordsHandler struct {
	records RecordQuerier
	logger  *zap.Logger
}

// NewRecordsHandler returns handler.
func NewRecordsHandler(records RecordQuerier, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

// ServeHTTP handles GET /api/v1/records.
func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := models.RecordQuery{
		ClientName: r.URL.Query().Get("client"),
		Plate:      r.URL.Query().Get("plate"),
		Limit:      defaultQueryLimit,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		q.Limit = limit
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "start must be RFC3339", http.StatusBadRequest)
			return
		}
		q.StartDate = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}
		q.EndDate = t
	}

	records, err := h.records.Query(r.Context(), q)
	if err != nil {
		h.logger.Error("record query failed", zap.Error(err))
		http.Error(w, "failed to query records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.TelematicsRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
