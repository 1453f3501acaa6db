package repository

import (
	"context"
	"database/sql"

	"fleetsync/internal/models"
)

// HistoryRepository persists per-run processing history.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository returns repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert stores one run's outcome and fills in the generated id and upload
// timestamp.
func (r *HistoryRepository) Insert(ctx context.Context, h *models.ProcessingHistory) error {
	const query = `
		INSERT INTO processing_history (
			filename, records_processed, records_failed, unique_vehicles,
			unique_clients, date_range_start, date_range_end, status,
			error_message, file_size_bytes, upload_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NOW())
		RETURNING id, upload_timestamp
	`
	return r.db.QueryRowContext(ctx, query,
		h.Filename,
		h.RecordsProcessed,
		h.RecordsFailed,
		h.UniqueVehicles,
		h.UniqueClients,
		h.DateRangeStart,
		h.DateRangeEnd,
		h.Status,
		h.ErrorMessage,
		h.FileSizeBytes,
	).Scan(&h.ID, &h.UploadTimestamp)
}

// List returns the most recent runs, newest upload first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]models.ProcessingHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, filename, upload_timestamp, records_processed, records_failed,
		       unique_vehicles, unique_clients, date_range_start, date_range_end,
		       status, COALESCE(error_message, ''), COALESCE(file_size_bytes, 0)
		FROM processing_history
		ORDER BY upload_timestamp DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.ProcessingHistory
	for rows.Next() {
		var (
			h     models.ProcessingHistory
			start sql.NullTime
			end   sql.NullTime
		)
		if err := rows.Scan(
			&h.ID,
			&h.Filename,
			&h.UploadTimestamp,
			&h.RecordsProcessed,
			&h.RecordsFailed,
			&h.UniqueVehicles,
			&h.UniqueClients,
			&start,
			&end,
			&h.Status,
			&h.ErrorMessage,
			&h.FileSizeBytes,
		); err != nil {
			return nil, err
		}
		if start.Valid {
			t := start.Time
			h.DateRangeStart = &t
		}
		if end.Valid {
			t := end.Time
			h.DateRangeEnd = &t
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// DeleteAll clears the processing history. Admin reset only.
func (r *HistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM processing_history`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
