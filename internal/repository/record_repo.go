package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fleetsync/internal/models"
)

// RecordRepository persists telematics records. Records are append-only from
// the ingestion path; bulk deletion exists only for the admin reset.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository returns repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const insertRecordQuery = `
	INSERT INTO telematics_records (
		client_id, vehicle_id, plate, asset_id, timestamp, gprs_timestamp,
		latitude, longitude, location, address, gps_quality, gprs_quality,
		speed_kmh, ignition, driver_name, blocked, event_type, geofence,
		entry, exit, packet_id, odometer_period_km, odometer_total_km,
		engine_hours_period, engine_hours_total, battery_level, voltage,
		image_url, created_at
	) VALUES (
		$1, $2, $3, NULLIF($4, ''), $5, $6,
		$7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12,
		$13, NULLIF($14, ''), NULLIF($15, ''), $16, NULLIF($17, ''), NULLIF($18, ''),
		$19, $20, NULLIF($21, ''), $22, $23,
		NULLIF($24, ''), NULLIF($25, ''), NULLIF($26, ''), $27,
		NULLIF($28, ''), NOW()
	)
`

// InsertBatch writes all records in a single transaction. Either every record
// commits or none does; the caller owns the batch-level failure accounting.
func (r *RecordRepository) InsertBatch(ctx context.Context, records []models.TelematicsRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRecordQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ClientID,
			rec.VehicleID,
			rec.Plate,
			rec.AssetID,
			rec.Timestamp,
			rec.GPRSTimestamp,
			rec.Latitude,
			rec.Longitude,
			rec.Location,
			rec.Address,
			rec.GPSQuality,
			rec.GPRSQuality,
			rec.SpeedKMH,
			rec.Ignition,
			rec.DriverName,
			rec.Blocked,
			rec.EventType,
			rec.Geofence,
			rec.Entry,
			rec.Exit,
			rec.PacketID,
			rec.OdometerPeriodKM,
			rec.OdometerTotalKM,
			rec.EngineHoursPeriod,
			rec.EngineHoursTotal,
			rec.BatteryLevel,
			rec.Voltage,
			rec.ImageURL,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const selectRecordColumns = `
	r.id, r.client_id, r.vehicle_id, r.plate, COALESCE(r.asset_id, ''),
	r.timestamp, r.gprs_timestamp, r.latitude, r.longitude,
	COALESCE(r.location, ''), COALESCE(r.address, ''), r.gps_quality, r.gprs_quality,
	r.speed_kmh, COALESCE(r.ignition, ''), COALESCE(r.driver_name, ''), r.blocked,
	COALESCE(r.event_type, ''), COALESCE(r.geofence, ''), r.entry, r.exit,
	COALESCE(r.packet_id, ''), r.odometer_period_km, r.odometer_total_km,
	COALESCE(r.engine_hours_period, ''), COALESCE(r.engine_hours_total, ''),
	COALESCE(r.battery_level, ''), r.voltage, COALESCE(r.image_url, ''), r.created_at
`

// Query returns denormalized records matching the filters, newest first.
func (r *RecordRepository) Query(ctx context.Context, q models.RecordQuery) ([]models.TelematicsRecord, error) {
	query := `
		SELECT ` + selectRecordColumns + `
		FROM telematics_records r
	`
	var conditions []string
	var args []any

	if q.ClientName != "" {
		args = append(args, q.ClientName)
		conditions = append(conditions, fmt.Sprintf("r.client_id = (SELECT id FROM clients WHERE name = $%d)", len(args)))
	}
	if q.Plate != "" {
		args = append(args, q.Plate)
		conditions = append(conditions, fmt.Sprintf("r.plate = $%d", len(args)))
	}
	if !q.StartDate.IsZero() {
		args = append(args, q.StartDate)
		conditions = append(conditions, fmt.Sprintf("r.timestamp >= $%d", len(args)))
	}
	if !q.EndDate.IsZero() {
		args = append(args, q.EndDate)
		conditions = append(conditions, fmt.Sprintf("r.timestamp <= $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.timestamp DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TelematicsRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (models.TelematicsRecord, error) {
	var (
		rec  models.TelematicsRecord
		gprs sql.NullTime
		lat  sql.NullFloat64
		lon  sql.NullFloat64
	)
	err := rows.Scan(
		&rec.ID, &rec.ClientID, &rec.VehicleID, &rec.Plate, &rec.AssetID,
		&rec.Timestamp, &gprs, &lat, &lon,
		&rec.Location, &rec.Address, &rec.GPSQuality, &rec.GPRSQuality,
		&rec.SpeedKMH, &rec.Ignition, &rec.DriverName, &rec.Blocked,
		&rec.EventType, &rec.Geofence, &rec.Entry, &rec.Exit,
		&rec.PacketID, &rec.OdometerPeriodKM, &rec.OdometerTotalKM,
		&rec.EngineHoursPeriod, &rec.EngineHoursTotal,
		&rec.BatteryLevel, &rec.Voltage, &rec.ImageURL, &rec.CreatedAt,
	)
	if err != nil {
		return rec, err
	}
	if gprs.Valid {
		t := gprs.Time
		rec.GPRSTimestamp = &t
	}
	if lat.Valid {
		v := lat.Float64
		rec.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		rec.Longitude = &v
	}
	return rec, nil
}

// FleetSummary aggregates the whole record store.
func (r *RecordRepository) FleetSummary(ctx context.Context) (*models.FleetSummary, error) {
	var summary models.FleetSummary

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&summary.TotalVehicles); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&summary.TotalClients); err != nil {
		return nil, err
	}

	const aggQuery = `
		SELECT
			COUNT(*),
			MIN(timestamp),
			MAX(timestamp),
			COALESCE(AVG(speed_kmh), 0),
			COALESCE(MAX(speed_kmh), 0),
			COALESCE(SUM(odometer_period_km), 0),
			COALESCE(AVG(gps_quality::int) * 100, 0)
		FROM telematics_records
	`
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, aggQuery).Scan(
		&summary.TotalRecords,
		&start,
		&end,
		&summary.AvgSpeedKMH,
		&summary.MaxSpeedKMH,
		&summary.TotalDistance,
		&summary.GPSCoveragePct,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		summary.DateRangeStart = &t
	}
	if end.Valid {
		t := end.Time
		summary.DateRangeEnd = &t
	}
	return &summary, nil
}

// DeleteAll removes every telematics record. Admin reset only, never part of
// an ingestion run.
func (r *RecordRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM telematics_records`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
