package models

import "time"

// Mode is the direction of a check event.
type Mode string

const (
	ModeIn  Mode = "IN"
	ModeOut Mode = "OUT"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeIn || m == ModeOut
}

// Title is the heading used in summaries.
func (m Mode) Title() string {
	if m == ModeIn {
		return "CHECK IN"
	}
	return "CHECK OUT"
}

// Event is one persisted check-in or check-out. Rows are never updated after insert.
// Odometer, Temp and Notes are nil when the driver skipped them.
type Event struct {
	ID           int64     `db:"id" json:"id"`
	CreatedAtUTC time.Time `db:"created_at_utc" json:"created_at_utc"`
	TSLocal      string    `db:"ts_local" json:"ts_local"`
	Mode         Mode      `db:"mode" json:"mode"`
	UserID       int64     `db:"user_id" json:"user_id"`
	DriverAlias  string    `db:"driver_alias" json:"driver_alias"`
	LoadID       string    `db:"load_id" json:"load_id"`
	Trailer      string    `db:"trailer" json:"trailer"`
	Location     string    `db:"location" json:"location"`
	Odometer     *string   `db:"odometer" json:"odometer"`
	Temp         *string   `db:"temp" json:"temp"`
	Photos       []string  `db:"photos_json" json:"photos"`
	Notes        *string   `db:"notes" json:"notes"`
}
