package ingest

import (
	"context"
	"errors"
	"strings"
)

// FallbackClientName is the sentinel used when a row carries no client name.
// Kept in the vendors' language since it is visible in persisted data.
const FallbackClientName = "Cliente Desconhecido"

// ErrMissingPlate rejects a record before entity resolution is attempted. The
// plate is the minimum admission criterion for a vehicle identity.
var ErrMissingPlate = errors.New("ingest: record has no plate")

// ClientStore is the lookup-or-insert surface for client entities.
type ClientStore interface {
	GetOrCreate(ctx context.Context, name string) (int64, error)
}

// VehicleStore is the lookup-or-insert surface for vehicle entities.
type VehicleStore interface {
	GetOrCreate(ctx context.Context, plate string, clientID int64, assetID string) (int64, error)
}

// resolver maps (client name, plate) pairs to stable identifiers for the life
// of one ingestion run. The in-memory caches only cut round trips; the unique
// constraints at the storage layer remain the correctness backstop.
type resolver struct {
	clients  ClientStore
	vehicles VehicleStore

	clientIDs  map[string]int64
	vehicleIDs map[string]int64
}

func newResolver(clients ClientStore, vehicles VehicleStore) *resolver {
	return &resolver{
		clients:    clients,
		vehicles:   vehicles,
		clientIDs:  make(map[string]int64),
		vehicleIDs: make(map[string]int64),
	}
}

// resolveClient returns the id for a client name, creating the row on first
// sight. A blank name resolves against the fallback sentinel instead of
// failing the record.
func (r *resolver) resolveClient(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = FallbackClientName
	}
	if id, ok := r.clientIDs[name]; ok {
		return id, nil
	}
	id, err := r.clients.GetOrCreate(ctx, name)
	if err != nil {
		return 0, err
	}
	r.clientIDs[name] = id
	return id, nil
}

// resolveVehicle returns the id for a plate, creating the row on first sight.
// A plate maps to exactly one vehicle: a later record reporting a different
// client does not reassign ownership.
func (r *resolver) resolveVehicle(ctx context.Context, plate string, clientID int64, assetID string) (int64, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return 0, ErrMissingPlate
	}
	if id, ok := r.vehicleIDs[plate]; ok {
		return id, nil
	}
	id, err := r.vehicles.GetOrCreate(ctx, plate, clientID, assetID)
	if err != nil {
		return 0, err
	}
	r.vehicleIDs[plate] = id
	return id, nil
}
