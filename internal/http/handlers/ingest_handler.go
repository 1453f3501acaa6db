package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"fleetsync/internal/ingest"
	"fleetsync/internal/models"
	"fleetsync/internal/progress"
)

// Batches arrive around 200MB; leave headroom for multipart framing.
const maxUploadBytes = 256 << 20

// Ingestor runs the strict upload path for one file.
type Ingestor interface {
	IngestFile(ctx context.Context, filename string, data []byte, p ingest.ProgressFunc) (*models.IngestResult, error)
}

// IngestHandler accepts multipart CSV uploads.
type IngestHandler struct {
	service  Ingestor
	progress *progress.Store
	logger   *zap.Logger
}

// NewIngestHandler returns handler. The progress store may be nil when redis
// is not configured.
func NewIngestHandler(service Ingestor, store *progress.Store, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		service:  service,
		progress: store,
		logger:   logger,
	}
}

type ingestResponse struct {
	RunID string `json:"run_id"`
	models.IngestResult
}

// ServeHTTP handles POST /api/v1/ingest.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	runID := newRunID()
	var reporter ingest.ProgressFunc
	if h.progress != nil {
		reporter = h.progress.Reporter(runID, h.logger)
	}

	result, err := h.service.IngestFile(r.Context(), header.Filename, data, reporter)
	if err != nil {
		h.logger.Warn("upload rejected",
			zap.String("filename", header.Filename), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, ingestResponse{RunID: runID, IngestResult: *result})
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{RunID: runID, IngestResult: *result})
}

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "run-unknown"
	}
	return hex.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
