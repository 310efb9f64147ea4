package conversation

import (
	"time"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

// InputKind tags the variant carried by Input.
type InputKind int

const (
	InputText InputKind = iota
	InputLocation
	InputPhoto
)

// Input is what a driver sent, reduced to what the form cares about. At is the moment the
// engine processed it and is used for the local timestamp of the event.
type Input struct {
	Kind     InputKind
	Text     string
	Location chat.Location
	PhotoRef string
	At       time.Time
}

func inputFrom(u chat.Update, at time.Time) Input {
	switch {
	case u.Location != nil:
		return Input{Kind: InputLocation, Location: *u.Location, At: at}
	case u.PhotoRef != "":
		return Input{Kind: InputPhoto, PhotoRef: u.PhotoRef, At: at}
	default:
		return Input{Kind: InputText, Text: u.Text, At: at}
	}
}
