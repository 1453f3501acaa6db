package repository

import (
	"context"
	"database/sql"

	"fleetsync/internal/models"
)

// VehicleRepository persists vehicle entities keyed by license plate.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository returns repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// GetOrCreate looks a vehicle up by unique plate, inserting on first sight.
// The conflict arm deliberately leaves client_id untouched: the first client
// seen with a plate keeps ownership even if later files disagree.
func (r *VehicleRepository) GetOrCreate(ctx context.Context, plate string, clientID int64, assetID string) (int64, error) {
	const query = `
		INSERT INTO vehicles (plate, client_id, asset_id)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (plate) DO UPDATE SET plate = EXCLUDED.plate
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, plate, clientID, assetID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// List returns all vehicles ordered by plate.
func (r *VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	const query = `
		SELECT id, plate, client_id, COALESCE(asset_id, ''), created_at
		FROM vehicles
		ORDER BY plate
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.ClientID, &v.AssetID, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}
