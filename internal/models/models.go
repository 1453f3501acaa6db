package models

import "time"

// Client owns vehicles and telematics records. Created lazily the first time a
// file references the name.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Vehicle is identified by its license plate, which is globally unique. The
// owning client is whoever reported the plate first.
type Vehicle struct {
	ID        int64     `json:"id"`
	Plate     string    `json:"plate"`
	ClientID  int64     `json:"client_id"`
	AssetID   string    `json:"asset_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TelematicsRecord is one timestamped GPS/sensor reading that passed admission
// (non-empty plate, parseable primary timestamp). Append-only.
type TelematicsRecord struct {
	ID        int64 `json:"id"`
	ClientID  int64 `json:"client_id"`
	VehicleID int64 `json:"vehicle_id"`

	Plate   string `json:"plate"`
	AssetID string `json:"asset_id,omitempty"`

	Timestamp     time.Time  `json:"timestamp"`
	GPRSTimestamp *time.Time `json:"gprs_timestamp,omitempty"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Location    string   `json:"location,omitempty"`
	Address     string   `json:"address,omitempty"`
	GPSQuality  bool     `json:"gps_quality"`
	GPRSQuality bool     `json:"gprs_quality"`

	SpeedKMH   float64 `json:"speed_kmh"`
	Ignition   string  `json:"ignition,omitempty"`
	DriverName string  `json:"driver_name,omitempty"`
	Blocked    bool    `json:"blocked"`

	EventType string `json:"event_type,omitempty"`
	Geofence  string `json:"geofence,omitempty"`
	Entry     bool   `json:"entry"`
	Exit      bool   `json:"exit"`

	PacketID          string  `json:"packet_id,omitempty"`
	OdometerPeriodKM  float64 `json:"odometer_period_km"`
	OdometerTotalKM   float64 `json:"odometer_total_km"`
	EngineHoursPeriod string  `json:"engine_hours_period,omitempty"`
	EngineHoursTotal  string  `json:"engine_hours_total,omitempty"`
	BatteryLevel      string  `json:"battery_level,omitempty"`
	Voltage           float64 `json:"voltage"`
	ImageURL          string  `json:"image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Processing statuses recorded per ingestion run.
const (
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusProcessing = "processing"
)

// ProcessingHistory is one row per ingestion run.
type ProcessingHistory struct {
	ID               int64      `json:"id"`
	Filename         string     `json:"filename"`
	UploadTimestamp  time.Time  `json:"upload_timestamp"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsFailed    int        `json:"records_failed"`
	UniqueVehicles   int        `json:"unique_vehicles"`
	UniqueClients    int        `json:"unique_clients"`
	DateRangeStart   *time.Time `json:"date_range_start,omitempty"`
	DateRangeEnd     *time.Time `json:"date_range_end,omitempty"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	FileSizeBytes    int64      `json:"file_size_bytes"`
}

// RecordQuery filters denormalized record reads. Zero values mean "no filter".
type RecordQuery struct {
	ClientName string
	Plate      string
	StartDate  time.Time
	EndDate    time.Time
	Limit      int
}

// FleetSummary aggregates the whole store for the dashboard layer.
type FleetSummary struct {
	TotalVehicles  int64      `json:"total_vehicles"`
	TotalClients   int64      `json:"total_clients"`
	TotalRecords   int64      `json:"total_records"`
	DateRangeStart *time.Time `json:"date_range_start,omitempty"`
	DateRangeEnd   *time.Time `json:"date_range_end,omitempty"`
	AvgSpeedKMH    float64    `json:"avg_speed_kmh"`
	MaxSpeedKMH    float64    `json:"max_speed_kmh"`
	TotalDistance  float64    `json:"total_distance_km"`
	GPSCoveragePct float64    `json:"gps_coverage_pct"`
}

// IngestResult is the outcome of one file run, success or not.
type IngestResult struct {
	Success          bool   `json:"success"`
	Filename         string `json:"filename"`
	RecordsProcessed int    `json:"records_processed"`
	RecordsFailed    int    `json:"records_failed"`
	UniqueVehicles   int    `json:"unique_vehicles"`
	UniqueClients    int    `json:"unique_clients"`
	Error            string `json:"error,omitempty"`
}
