package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
	defaultConnLifetime = time.Hour
	defaultConnIdleTime = 30 * time.Minute
	defaultPingTimeout  = 5 * time.Second
)

// NewPostgres creates a pgx/stdlib backed *sql.DB pool and validates the
// connection.
func NewPostgres(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: empty DSN")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(defaultMaxOpenConns)
	pool.SetMaxIdleConns(defaultMaxIdleConns)
	pool.SetConnMaxLifetime(defaultConnLifetime)
	pool.SetConnMaxIdleTime(defaultConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) UNIQUE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vehicles (
	id BIGSERIAL PRIMARY KEY,
	plate VARCHAR(20) UNIQUE NOT NULL,
	client_id BIGINT NOT NULL REFERENCES clients(id),
	asset_id VARCHAR(50),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS telematics_records (
	id BIGSERIAL PRIMARY KEY,
	client_id BIGINT NOT NULL REFERENCES clients(id),
	vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
	plate VARCHAR(20) NOT NULL,
	asset_id VARCHAR(50),
	timestamp TIMESTAMPTZ NOT NULL,
	gprs_timestamp TIMESTAMPTZ,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	location VARCHAR(255),
	address TEXT,
	gps_quality BOOLEAN NOT NULL DEFAULT FALSE,
	gprs_quality BOOLEAN NOT NULL DEFAULT FALSE,
	speed_kmh DOUBLE PRECISION NOT NULL DEFAULT 0,
	ignition VARCHAR(10),
	driver_name VARCHAR(255),
	blocked BOOLEAN NOT NULL DEFAULT FALSE,
	event_type VARCHAR(100),
	geofence VARCHAR(255),
	entry BOOLEAN NOT NULL DEFAULT FALSE,
	exit BOOLEAN NOT NULL DEFAULT FALSE,
	packet_id VARCHAR(50),
	odometer_period_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	odometer_total_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	engine_hours_period VARCHAR(20),
	engine_hours_total VARCHAR(20),
	battery_level VARCHAR(10),
	voltage DOUBLE PRECISION NOT NULL DEFAULT 0,
	image_url VARCHAR(500),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_telematics_records_client ON telematics_records(client_id);
CREATE INDEX IF NOT EXISTS idx_telematics_records_vehicle ON telematics_records(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_telematics_records_plate ON telematics_records(plate);
CREATE INDEX IF NOT EXISTS idx_telematics_records_timestamp ON telematics_records(timestamp);

CREATE TABLE IF NOT EXISTS processing_history (
	id BIGSERIAL PRIMARY KEY,
	filename VARCHAR(255) NOT NULL,
	upload_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	records_processed INTEGER NOT NULL DEFAULT 0,
	records_failed INTEGER NOT NULL DEFAULT 0,
	unique_vehicles INTEGER NOT NULL DEFAULT 0,
	unique_clients INTEGER NOT NULL DEFAULT 0,
	date_range_start TIMESTAMPTZ,
	date_range_end TIMESTAMPTZ,
	status VARCHAR(50) NOT NULL DEFAULT 'completed',
	error_message TEXT,
	file_size_bytes BIGINT
);
`

// Migrate applies the fixed target schema. Idempotent.
func Migrate(ctx context.Context, pool *sql.DB) error {
	if _, err := pool.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db: apply schema: %w", err)
	}
	return nil
}
