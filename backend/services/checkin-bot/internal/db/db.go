package db

import (
	"context"
	"database/sql"
	"time"

	libdb "fleetcheck/backend/libs/db"
)

// NewPostgres connects to Postgres using shared library helper. The bot keeps the pool small:
// every statement is a single-row write or one scan.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	return libdb.NewPostgresDB(ctx, dsn, libdb.Options{
		MaxOpenConns: 8,
		MaxIdleConns: 2,
		ConnIdleTime: 10 * time.Minute,
	})
}
