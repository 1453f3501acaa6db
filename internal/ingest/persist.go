package ingest

import (
	"context"

	"go.uber.org/zap"

	"fleetsync/internal/metrics"
	"fleetsync/internal/models"
)

// DefaultBatchSize bounds transaction size while keeping progress reporting
// granular enough for an interactive upload.
const DefaultBatchSize = 100

const progressEvery = 10

// RecordStore commits staged records as one transaction per call.
type RecordStore interface {
	InsertBatch(ctx context.Context, records []models.TelematicsRecord) error
}

// ProgressFunc observes ingestion progress. Implementations must be fast and
// must not block: reporting can never cancel an in-flight batch.
type ProgressFunc func(processed, total int, phase string)

// PersistResult is the standardized outcome of a persistence run.
type PersistResult struct {
	Saved  int `json:"saved"`
	Failed int `json:"failed"`
}

// Record is one coerced row awaiting entity resolution.
type Record struct {
	ClientName string
	Data       models.TelematicsRecord
}

// engine splits records into fixed-size batches and commits them one at a
// time. A per-record failure (bad timestamp, unresolvable entities) skips just
// that record; a failed batch commit fails every record staged in the batch.
// Already-committed batches always stay persisted.
type engine struct {
	records   RecordStore
	batchSize int
	logger    *zap.Logger
	metrics   *metrics.Ingest
}

func newEngine(records RecordStore, batchSize int, logger *zap.Logger, m *metrics.Ingest) *engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &engine{
		records:   records,
		batchSize: batchSize,
		logger:    logger,
		metrics:   m,
	}
}

func (e *engine) persist(ctx context.Context, res *resolver, input []Record, progress ProgressFunc) PersistResult {
	var result PersistResult
	total := len(input)

	// staged counts records admitted to the current batch but not yet
	// committed; without it intra-batch reports would sit still until commit.
	report := func(staged int, phase string) {
		if progress != nil {
			progress(result.Saved+result.Failed+staged, total, phase)
		}
	}

	for start := 0; start < total; start += e.batchSize {
		end := start + e.batchSize
		if end > total {
			end = total
		}
		batch := input[start:end]

		staged := make([]models.TelematicsRecord, 0, len(batch))
		for _, rec := range batch {
			if rec.Data.Timestamp.IsZero() {
				result.Failed++
				e.metrics.AddFailed(1)
				continue
			}

			clientID, err := res.resolveClient(ctx, rec.ClientName)
			if err != nil {
				e.logger.Warn("client resolution failed",
					zap.String("client", rec.ClientName), zap.Error(err))
				result.Failed++
				e.metrics.AddFailed(1)
				continue
			}
			vehicleID, err := res.resolveVehicle(ctx, rec.Data.Plate, clientID, rec.Data.AssetID)
			if err != nil {
				e.logger.Warn("vehicle resolution failed",
					zap.String("plate", rec.Data.Plate), zap.Error(err))
				result.Failed++
				e.metrics.AddFailed(1)
				continue
			}

			rec.Data.ClientID = clientID
			rec.Data.VehicleID = vehicleID
			staged = append(staged, rec.Data)

			if len(staged)%progressEvery == 0 {
				report(len(staged), "inserting")
			}
		}

		commit := e.metrics.BatchTimer()
		if err := e.records.InsertBatch(ctx, staged); err != nil {
			commit()
			// The whole batch rolled back: every staged record failed. Per-record
			// failures counted above stand on their own.
			e.logger.Error("batch commit failed",
				zap.Int("batch_start", start), zap.Int("staged", len(staged)), zap.Error(err))
			result.Failed += len(staged)
			e.metrics.AddFailed(len(staged))
			report(0, "inserting")
			continue
		}
		commit()

		result.Saved += len(staged)
		e.metrics.AddSaved(len(staged))
		report(0, "inserting")
	}

	e.logger.Info("persistence finished",
		zap.Int("saved", result.Saved), zap.Int("failed", result.Failed))
	return result
}
