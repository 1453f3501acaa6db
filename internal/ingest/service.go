package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"fleetsync/internal/csvio"
	"fleetsync/internal/metrics"
	"fleetsync/internal/models"
)

// HistoryStore records one row per ingestion run.
type HistoryStore interface {
	Insert(ctx context.Context, h *models.ProcessingHistory) error
}

// Service is the top-level ingestion orchestrator: format detection, header
// normalization, field coercion, batched persistence, then one processing
// history row per run.
type Service struct {
	clients   ClientStore
	vehicles  VehicleStore
	records   RecordStore
	history   HistoryStore
	batchSize int
	logger    *zap.Logger
	metrics   *metrics.Ingest
}

// NewService wires the orchestrator. batchSize <= 0 selects the default.
func NewService(clients ClientStore, vehicles VehicleStore, records RecordStore, history HistoryStore, batchSize int, logger *zap.Logger, m *metrics.Ingest) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		clients:   clients,
		vehicles:  vehicles,
		records:   records,
		history:   history,
		batchSize: batchSize,
		logger:    logger,
		metrics:   m,
	}
}

// IngestFile runs the strict upload path: the full required column set must be
// present after header normalization.
func (s *Service) IngestFile(ctx context.Context, filename string, data []byte, progress ProgressFunc) (*models.IngestResult, error) {
	return s.run(ctx, filename, data, true, progress)
}

// MigrateFile runs the permissive bulk-migration path: missing columns are
// tolerated and resolved best-effort per row.
func (s *Service) MigrateFile(ctx context.Context, filename string, data []byte, progress ProgressFunc) (*models.IngestResult, error) {
	return s.run(ctx, filename, data, false, progress)
}

// MigrateFiles ingests several files sequentially, smallest first so fast
// feedback surfaces early. A run where no file succeeds is a hard failure.
func (s *Service) MigrateFiles(ctx context.Context, paths []string) ([]models.IngestResult, error) {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Slice(ordered, func(i, j int) bool {
		return fileSize(ordered[i]) < fileSize(ordered[j])
	})

	results := make([]models.IngestResult, 0, len(ordered))
	succeeded := 0
	for _, path := range ordered {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Error("read file failed", zap.String("path", path), zap.Error(err))
			results = append(results, models.IngestResult{
				Filename: filepath.Base(path),
				Error:    err.Error(),
			})
			continue
		}
		result, err := s.MigrateFile(ctx, filepath.Base(path), data, nil)
		if err != nil {
			s.logger.Error("file ingestion failed", zap.String("path", path), zap.Error(err))
		} else {
			succeeded++
		}
		results = append(results, *result)
	}

	if len(ordered) > 0 && succeeded == 0 {
		return results, fmt.Errorf("ingest: all %d files failed", len(ordered))
	}
	return results, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (s *Service) run(ctx context.Context, filename string, data []byte, strict bool, progress ProgressFunc) (*models.IngestResult, error) {
	result := &models.IngestResult{Filename: filename}

	table, err := csvio.ReadTable(data)
	if err != nil {
		return s.failRun(ctx, result, int64(len(data)), err)
	}
	if strict {
		if err := csvio.ValidateRequired(table.Headers); err != nil {
			return s.failRun(ctx, result, int64(len(data)), err)
		}
	}

	s.logger.Info("file decoded",
		zap.String("filename", filename),
		zap.String("encoding", table.Format.Encoding),
		zap.String("delimiter", string(table.Format.Delimiter)),
		zap.Int("rows", len(table.Rows)))

	input, stats := buildRecords(table)
	s.metrics.AddCoerced(stats.coercions)
	s.metrics.AddFailed(stats.skippedNoPlate)

	eng := newEngine(s.records, s.batchSize, s.logger, s.metrics)
	res := newResolver(s.clients, s.vehicles)
	persisted := eng.persist(ctx, res, input, progress)

	result.Success = true
	result.RecordsProcessed = persisted.Saved
	result.RecordsFailed = persisted.Failed + stats.skippedNoPlate
	result.UniqueVehicles = len(stats.plates)
	result.UniqueClients = len(stats.clientNames)

	history := &models.ProcessingHistory{
		Filename:         filename,
		RecordsProcessed: result.RecordsProcessed,
		RecordsFailed:    result.RecordsFailed,
		UniqueVehicles:   result.UniqueVehicles,
		UniqueClients:    result.UniqueClients,
		DateRangeStart:   stats.firstSeen,
		DateRangeEnd:     stats.lastSeen,
		Status:           models.StatusCompleted,
		FileSizeBytes:    int64(len(data)),
	}
	if err := s.history.Insert(ctx, history); err != nil {
		s.logger.Error("write processing history failed",
			zap.String("filename", filename), zap.Error(err))
	}

	s.metrics.RunFinished(models.StatusCompleted)
	return result, nil
}

// failRun records a structural failure (no usable format, missing required
// headers) before any storage write, so aborted uploads stay visible in the
// processing history.
func (s *Service) failRun(ctx context.Context, result *models.IngestResult, size int64, cause error) (*models.IngestResult, error) {
	result.Success = false
	result.Error = cause.Error()

	history := &models.ProcessingHistory{
		Filename:      result.Filename,
		Status:        models.StatusFailed,
		ErrorMessage:  cause.Error(),
		FileSizeBytes: size,
	}
	if err := s.history.Insert(ctx, history); err != nil {
		s.logger.Error("write processing history failed",
			zap.String("filename", result.Filename), zap.Error(err))
	}

	s.metrics.RunFinished(models.StatusFailed)
	return result, cause
}

// runStats aggregates per-file summary data while rows are mapped.
type runStats struct {
	plates         map[string]struct{}
	clientNames    map[string]struct{}
	firstSeen      *time.Time
	lastSeen       *time.Time
	coercions      int
	skippedNoPlate int
}

// buildRecords maps decoded rows to staged records. Rows without a plate are
// rejected here (counted, never staged); timestamp admission stays with the
// persistence engine.
func buildRecords(table *csvio.Table) ([]Record, runStats) {
	stats := runStats{
		plates:      make(map[string]struct{}),
		clientNames: make(map[string]struct{}),
	}

	records := make([]Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		if name := csvio.Text(row[csvio.KeyClient], ""); name != "" {
			stats.clientNames[name] = struct{}{}
		}

		plate := csvio.Text(row[csvio.KeyPlate], "")
		if plate == "" {
			stats.skippedNoPlate++
			continue
		}
		stats.plates[plate] = struct{}{}

		rec, coercions := mapRow(row, plate)
		stats.coercions += coercions

		if !rec.Data.Timestamp.IsZero() {
			observeRange(&stats, rec.Data.Timestamp)
		}
		records = append(records, rec)
	}
	return records, stats
}

func observeRange(stats *runStats, ts time.Time) {
	if stats.firstSeen == nil || ts.Before(*stats.firstSeen) {
		t := ts
		stats.firstSeen = &t
	}
	if stats.lastSeen == nil || ts.After(*stats.lastSeen) {
		t := ts
		stats.lastSeen = &t
	}
}

func mapRow(row csvio.Row, plate string) (Record, int) {
	coercions := 0
	countFloat := func(key string) float64 {
		v, coerced := csvio.Float(row[key])
		if coerced {
			coercions++
		}
		return v
	}
	countFlag := func(key string) bool {
		v, coerced := csvio.Int(row[key])
		if coerced {
			coercions++
		}
		return v == 1
	}

	data := models.TelematicsRecord{
		Plate:   plate,
		AssetID: csvio.Text(row[csvio.KeyAsset], ""),

		Location:    csvio.Text(row[csvio.KeyLocation], ""),
		Address:     csvio.Text(row[csvio.KeyAddress], ""),
		GPSQuality:  countFlag(csvio.KeyGPS),
		GPRSQuality: countFlag(csvio.KeyGPRS),

		SpeedKMH:   countFloat(csvio.KeySpeed),
		Ignition:   csvio.Text(row[csvio.KeyIgnition], ""),
		DriverName: csvio.Text(row[csvio.KeyDriver], ""),
		Blocked:    countFlag(csvio.KeyBlocked),

		EventType: csvio.Text(row[csvio.KeyEventType], ""),
		Geofence:  csvio.Text(row[csvio.KeyGeofence], ""),
		Entry:     countFlag(csvio.KeyEntry),
		Exit:      countFlag(csvio.KeyExit),

		PacketID:         csvio.Text(row[csvio.KeyPacket], ""),
		OdometerPeriodKM: countFloat(csvio.KeyOdometerPeriod),
		OdometerTotalKM:  countFloat(csvio.KeyOdometerTotal),

		EngineHoursPeriod: csvio.Text(row[csvio.KeyEngineHoursPeriod], ""),
		EngineHoursTotal:  csvio.Text(row[csvio.KeyEngineHoursTotal], ""),
		BatteryLevel:      csvio.Text(row[csvio.KeyBattery], ""),
		Voltage:           countFloat(csvio.KeyVoltage),
		ImageURL:          csvio.Text(row[csvio.KeyImage], ""),
	}

	if ts, ok := csvio.Date(row[csvio.KeyTimestamp]); ok {
		data.Timestamp = ts
	}
	if ts, ok := csvio.Date(row[csvio.KeyGPRSTimestamp]); ok {
		data.GPRSTimestamp = &ts
	}
	if lat, lon, ok := csvio.LatLon(row[csvio.KeyLocation]); ok {
		data.Latitude = &lat
		data.Longitude = &lon
	}

	return Record{
		ClientName: csvio.Text(row[csvio.KeyClient], ""),
		Data:       data,
	}, coercions
}
