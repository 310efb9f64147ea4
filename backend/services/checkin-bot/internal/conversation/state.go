package conversation

import (
	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// State is the position of a driver in the check-in form.
type State int

const (
	StateIdle State = iota
	StateAwaitingAuth
	StateAwaitingMode
	StateAwaitingLoad
	StateAwaitingTrailer
	StateAwaitingLocation
	StateAwaitingOdometer
	StateAwaitingTemp
	StateAwaitingPhotos
	StateAwaitingNotes
	StateConfirming
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateAwaitingAuth:     "awaiting_auth",
	StateAwaitingMode:     "awaiting_mode",
	StateAwaitingLoad:     "awaiting_load",
	StateAwaitingTrailer:  "awaiting_trailer",
	StateAwaitingLocation: "awaiting_location",
	StateAwaitingOdometer: "awaiting_odometer",
	StateAwaitingTemp:     "awaiting_temp",
	StateAwaitingPhotos:   "awaiting_photos",
	StateAwaitingNotes:    "awaiting_notes",
	StateConfirming:       "confirming",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Draft holds the answers collected so far.
type Draft struct {
	Mode     models.Mode
	LoadID   string
	Trailer  string
	Location string
	Odometer *string
	Temp     *string
	Photos   []string
	Notes    *string
	TSLocal  string
}

// Session is the in-memory conversation of one user. Alias is empty until the user is known
// to be a registered driver.
type Session struct {
	UserID int64
	ChatID int64
	Alias  string
	State  State
	Draft  Draft
}

// Event freezes the draft into an event ready for insertion.
func (s Session) Event() models.Event {
	photos := make([]string, len(s.Draft.Photos))
	copy(photos, s.Draft.Photos)
	return models.Event{
		TSLocal:     s.Draft.TSLocal,
		Mode:        s.Draft.Mode,
		UserID:      s.UserID,
		DriverAlias: s.Alias,
		LoadID:      s.Draft.LoadID,
		Trailer:     s.Draft.Trailer,
		Location:    s.Draft.Location,
		Odometer:    s.Draft.Odometer,
		Temp:        s.Draft.Temp,
		Photos:      photos,
		Notes:       s.Draft.Notes,
	}
}

func (s Session) clone() Session {
	if s.Draft.Photos != nil {
		photos := make([]string, len(s.Draft.Photos))
		copy(photos, s.Draft.Photos)
		s.Draft.Photos = photos
	}
	return s
}
