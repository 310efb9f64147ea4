package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// ErrDriverNotFound is returned when no alias is registered for a user_id.
var ErrDriverNotFound = errors.New("driver not found")

// DriverRepository persists the user_id -> alias registry.
type DriverRepository struct {
	db *sql.DB
}

// NewDriverRepository returns repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Upsert registers the driver, replacing any alias previously stored for the user_id.
func (r *DriverRepository) Upsert(ctx context.Context, driver models.Driver) error {
	const query = `
		INSERT INTO drivers (user_id, alias)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET alias = EXCLUDED.alias
	`
	_, err := r.db.ExecContext(ctx, query, driver.UserID, driver.Alias)
	return err
}

// Get returns the driver registered for userID.
func (r *DriverRepository) Get(ctx context.Context, userID int64) (*models.Driver, error) {
	const query = `SELECT user_id, alias FROM drivers WHERE user_id = $1`
	var d models.Driver
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&d.UserID, &d.Alias); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns every driver ordered by alias.
func (r *DriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	const query = `SELECT user_id, alias FROM drivers ORDER BY alias, user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.UserID, &d.Alias); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drivers, nil
}
