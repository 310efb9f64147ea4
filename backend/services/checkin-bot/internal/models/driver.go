package models

// Driver is a registered user_id and the alias it logged in with.
type Driver struct {
	UserID int64  `db:"user_id" json:"user_id"`
	Alias  string `db:"alias" json:"alias"`
}
