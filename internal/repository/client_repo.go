package repository

import (
	"context"
	"database/sql"

	"fleetsync/internal/models"
)

// ClientRepository persists client entities.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository returns repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetOrCreate looks a client up by unique name, inserting on first sight. The
// DO UPDATE arm only rewrites the key so the RETURNING clause fires on both
// paths in a single round trip.
func (r *ClientRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	const query = `
		INSERT INTO clients (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// List returns all clients ordered by name.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	const query = `
		SELECT id, name, created_at
		FROM clients
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
