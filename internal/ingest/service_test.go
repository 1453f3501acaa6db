package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fleetsync/internal/csvio"
	"fleetsync/internal/models"
)

type serviceFixture struct {
	clients  *fakeClientStore
	vehicles *fakeVehicleStore
	records  *fakeRecordStore
	history  *fakeHistoryStore
	service  *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		clients:  newFakeClientStore(),
		vehicles: newFakeVehicleStore(),
		records:  &fakeRecordStore{},
		history:  &fakeHistoryStore{},
	}
	f.service = NewService(f.clients, f.vehicles, f.records, f.history, 0, zap.NewNop(), nil)
	return f
}

// Four-column vendor export: two parseable rows for one vehicle plus one row
// whose timestamp cannot be parsed.
const partialExport = "Cliente;Placa;Data;Velocidade (Km)\n" +
	"ACME;ABC1234;01/02/2024 10:00:00;45.5\n" +
	"ACME;ABC1234;01/02/2024 10:05:00;50\n" +
	"ACME;ABC1234;not a date;60\n"

func TestMigrateFilePartialExport(t *testing.T) {
	f := newServiceFixture()

	result, err := f.service.MigrateFile(context.Background(), "export.csv", []byte(partialExport), nil)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if result.RecordsProcessed != 2 || result.RecordsFailed != 1 {
		t.Fatalf("processed=%d failed=%d", result.RecordsProcessed, result.RecordsFailed)
	}
	if result.UniqueVehicles != 1 || result.UniqueClients != 1 {
		t.Fatalf("vehicles=%d clients=%d", result.UniqueVehicles, result.UniqueClients)
	}

	if len(f.clients.ids) != 1 {
		t.Fatalf("clients created: %v", f.clients.ids)
	}
	if _, ok := f.clients.ids["ACME"]; !ok {
		t.Fatalf("ACME missing: %v", f.clients.ids)
	}
	if len(f.vehicles.ids) != 1 {
		t.Fatalf("vehicles created: %v", f.vehicles.ids)
	}
	if _, ok := f.vehicles.ids["ABC1234"]; !ok {
		t.Fatalf("ABC1234 missing: %v", f.vehicles.ids)
	}

	inserted := f.records.inserted()
	if len(inserted) != 2 {
		t.Fatalf("inserted %d records", len(inserted))
	}
	if inserted[0].SpeedKMH != 45.5 {
		t.Fatalf("speed = %v", inserted[0].SpeedKMH)
	}

	if len(f.history.rows) != 1 {
		t.Fatalf("history rows: %d", len(f.history.rows))
	}
	h := f.history.rows[0]
	if h.Status != models.StatusCompleted || h.RecordsProcessed != 2 || h.RecordsFailed != 1 {
		t.Fatalf("history = %+v", h)
	}
	if h.DateRangeStart == nil || h.DateRangeEnd == nil {
		t.Fatalf("date range not recorded: %+v", h)
	}
	if !h.DateRangeStart.Before(*h.DateRangeEnd) {
		t.Fatalf("date range inverted: %v .. %v", h.DateRangeStart, h.DateRangeEnd)
	}
}

func TestIngestFileRejectsIncompleteHeader(t *testing.T) {
	f := newServiceFixture()

	result, err := f.service.IngestFile(context.Background(), "export.csv", []byte(partialExport), nil)
	var missing *csvio.MissingHeadersError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingHeadersError, got %v", err)
	}
	if result.Success {
		t.Fatalf("result = %+v", result)
	}
	if len(f.records.batches) != 0 {
		t.Fatalf("records persisted despite rejected header")
	}
	if len(f.history.rows) != 1 || f.history.rows[0].Status != models.StatusFailed {
		t.Fatalf("history = %+v", f.history.rows)
	}
}

func TestMigrateFileReingestCreatesNoDuplicateEntities(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.service.MigrateFile(ctx, "export.csv", []byte(partialExport), nil); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if len(f.clients.ids) != 1 || len(f.vehicles.ids) != 1 {
		t.Fatalf("entities duplicated: clients=%v vehicles=%v", f.clients.ids, f.vehicles.ids)
	}
	// Records are append-only: the second run adds its rows again.
	if got := len(f.records.inserted()); got != 4 {
		t.Fatalf("inserted %d records across two runs", got)
	}
	if len(f.history.rows) != 2 {
		t.Fatalf("history rows: %d", len(f.history.rows))
	}
}

func TestMigrateFileUndetectableFormat(t *testing.T) {
	f := newServiceFixture()

	result, err := f.service.MigrateFile(context.Background(), "notes.txt", []byte("plain text file\nwith no delimiters\n"), nil)
	if !errors.Is(err, csvio.ErrNoFormat) {
		t.Fatalf("expected ErrNoFormat, got %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("result = %+v", result)
	}
	if len(f.history.rows) != 1 {
		t.Fatalf("history rows: %d", len(f.history.rows))
	}
	h := f.history.rows[0]
	if h.Status != models.StatusFailed || h.ErrorMessage == "" {
		t.Fatalf("history = %+v", h)
	}
}

func TestMigrateFileBlankClientGetsFallback(t *testing.T) {
	f := newServiceFixture()
	data := "Cliente;Placa;Data\n" +
		";XYZ5678;01/02/2024 10:00:00\n"

	result, err := f.service.MigrateFile(context.Background(), "export.csv", []byte(data), nil)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.RecordsProcessed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if _, ok := f.clients.ids[FallbackClientName]; !ok {
		t.Fatalf("fallback client not created: %v", f.clients.ids)
	}
	// Blank names never count toward the per-file client tally.
	if result.UniqueClients != 0 {
		t.Fatalf("unique clients = %d", result.UniqueClients)
	}
}

func TestMigrateFileRowWithoutPlateIsCounted(t *testing.T) {
	f := newServiceFixture()
	data := "Cliente;Placa;Data\n" +
		"ACME;;01/02/2024 10:00:00\n" +
		"ACME;ABC1234;01/02/2024 10:05:00\n"

	result, err := f.service.MigrateFile(context.Background(), "export.csv", []byte(data), nil)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.RecordsProcessed != 1 || result.RecordsFailed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if got := len(f.records.inserted()); got != 1 {
		t.Fatalf("inserted %d records", got)
	}
}

func TestMigrateFileCoordinatesRoundTrip(t *testing.T) {
	f := newServiceFixture()
	data := "Cliente,Placa,Data,Localização\n" +
		"ACME,ABC1234,01/02/2024 10:00:00,\"-23.55,-46.63\"\n"

	if _, err := f.service.MigrateFile(context.Background(), "export.csv", []byte(data), nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	inserted := f.records.inserted()
	if len(inserted) != 1 {
		t.Fatalf("inserted %d records", len(inserted))
	}
	rec := inserted[0]
	if rec.Latitude == nil || rec.Longitude == nil {
		t.Fatalf("coordinates not split: %+v", rec)
	}
	if *rec.Latitude != -23.55 || *rec.Longitude != -46.63 {
		t.Fatalf("coordinates = (%v, %v)", *rec.Latitude, *rec.Longitude)
	}
	if rec.Location != "-23.55,-46.63" {
		t.Fatalf("raw location = %q", rec.Location)
	}
}
