package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// EventRepository appends check events and scans them back for exports.
type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventRepository returns repository using the wall clock for created_at_utc.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

// Insert stores ev as a single row and returns the id assigned by the database.
// CreatedAtUTC and ID are filled on ev.
func (r *EventRepository) Insert(ctx context.Context, ev *models.Event) (int64, error) {
	photos := ev.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return 0, fmt.Errorf("encode photos: %w", err)
	}

	createdAt := r.now().UTC()
	const query = `
		INSERT INTO events (
			created_at_utc, ts_local, mode, user_id, driver_alias, load_id, trailer,
			location, odometer, temp, photos_json, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		createdAt.Format(time.RFC3339Nano),
		ev.TSLocal,
		string(ev.Mode),
		ev.UserID,
		ev.DriverAlias,
		ev.LoadID,
		ev.Trailer,
		ev.Location,
		ev.Odometer,
		ev.Temp,
		string(photosJSON),
		ev.Notes,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	ev.ID = id
	ev.CreatedAtUTC = createdAt
	ev.Photos = photos
	return id, nil
}

// ListSince returns events whose created_at_utc is at or after cutoff, in id order.
// A row whose timestamp cannot be parsed counts as the Unix epoch.
func (r *EventRepository) ListSince(ctx context.Context, cutoff time.Time) ([]models.Event, error) {
	const query = `
		SELECT id, created_at_utc, ts_local, mode, user_id, driver_alias, load_id, trailer,
		       location, odometer, temp, photos_json, notes
		FROM events
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			ev         models.Event
			createdRaw string
			mode       string
			odometer   sql.NullString
			temp       sql.NullString
			photosRaw  sql.NullString
			notes      sql.NullString
		)
		if err := rows.Scan(
			&ev.ID,
			&createdRaw,
			&ev.TSLocal,
			&mode,
			&ev.UserID,
			&ev.DriverAlias,
			&ev.LoadID,
			&ev.Trailer,
			&ev.Location,
			&odometer,
			&temp,
			&photosRaw,
			&notes,
		); err != nil {
			return nil, err
		}

		ev.CreatedAtUTC = parseCreatedAt(createdRaw)
		if ev.CreatedAtUTC.Before(cutoff) {
			continue
		}
		ev.Mode = models.Mode(mode)
		ev.Odometer = nullable(odometer)
		ev.Temp = nullable(temp)
		ev.Notes = nullable(notes)
		ev.Photos = decodePhotos(photosRaw)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func parseCreatedAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t.UTC()
}

func decodePhotos(raw sql.NullString) []string {
	photos := []string{}
	if !raw.Valid || raw.String == "" {
		return photos
	}
	if err := json.Unmarshal([]byte(raw.String), &photos); err != nil || photos == nil {
		return []string{}
	}
	return photos
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
