package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS drivers (
		user_id BIGINT PRIMARY KEY,
		alias   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id             BIGSERIAL PRIMARY KEY,
		created_at_utc TEXT NOT NULL,
		ts_local       TEXT NOT NULL,
		mode           TEXT NOT NULL,
		user_id        BIGINT NOT NULL,
		driver_alias   TEXT NOT NULL,
		load_id        TEXT NOT NULL,
		trailer        TEXT NOT NULL,
		location       TEXT NOT NULL,
		odometer       TEXT,
		temp           TEXT,
		photos_json    TEXT NOT NULL DEFAULT '[]',
		notes          TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// EnsureSchema creates the drivers, events and settings tables when missing.
// It is run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
