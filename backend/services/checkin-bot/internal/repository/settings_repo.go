package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrSettingNotFound is returned for keys that were never set.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository is a small key/value table.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository returns repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored value for key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = $1`
	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts key.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}
