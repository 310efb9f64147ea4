package conversation

import (
	"fmt"
	"strings"
	"time"

	"fleetcheck/backend/services/checkin-bot/internal/models"
	"fleetcheck/backend/services/checkin-bot/internal/summary"
)

// TimestampLayout is the ts_local layout stored with every event.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// MaxPhotos caps the photos collected per event.
const MaxPhotos = 3

// PinMatcher resolves a typed PIN to a driver alias.
type PinMatcher interface {
	Match(pin string) (string, bool)
}

// Options tunes the machine. Zero values fall back to DefaultLocale and UTC.
type Options struct {
	Locale          *Locale
	Zone            *time.Location
	StrictPhotoDone bool
}

// Machine is the transition function of the check-in form. It holds no per-user state.
type Machine struct {
	pins   PinMatcher
	text   Locale
	zone   *time.Location
	strict bool
}

func NewMachine(pins PinMatcher, opts Options) *Machine {
	text := DefaultLocale()
	if opts.Locale != nil {
		text = *opts.Locale
	}
	zone := opts.Zone
	if zone == nil {
		zone = time.UTC
	}
	return &Machine{pins: pins, text: text, zone: zone, strict: opts.StrictPhotoDone}
}

// Locale returns the strings the machine replies with.
func (m *Machine) Locale() Locale {
	return m.text
}

// Start restarts the conversation of s's user. s.Alias must already reflect the driver
// registry; any draft in s is dropped.
func (m *Machine) Start(s Session) (Session, []Effect) {
	next := Session{UserID: s.UserID, ChatID: s.ChatID, Alias: s.Alias}
	if next.Alias == "" {
		next.State = StateAwaitingAuth
		return next, []Effect{reply(m.text.AskPIN, removeKeyboard())}
	}
	next.State = StateAwaitingMode
	return next, []Effect{reply(m.text.hello(next.Alias)+"\n"+m.text.Welcome, m.text.MainKeyboard())}
}

// Step applies one input to s and returns the next session plus the effects to run.
// The returned session is only valid once every effect succeeded.
func (m *Machine) Step(s Session, in Input) (Session, []Effect) {
	s = s.clone()
	switch s.State {
	case StateIdle:
		return m.idle(s, in)
	case StateAwaitingAuth:
		return m.auth(s, in)
	case StateAwaitingMode:
		return m.mode(s, in)
	case StateAwaitingLoad:
		return m.freeText(s, in, m.text.AskLoad, func(d *Draft, v string) {
			d.LoadID = v
		}, StateAwaitingTrailer, reply(m.text.AskTrailer, nil))
	case StateAwaitingTrailer:
		return m.freeText(s, in, m.text.AskTrailer, func(d *Draft, v string) {
			d.Trailer = v
		}, StateAwaitingLocation, reply(m.text.AskLocation, m.text.locationKeyboard()))
	case StateAwaitingLocation:
		return m.location(s, in)
	case StateAwaitingOdometer:
		return m.freeText(s, in, m.text.AskOdometer, func(d *Draft, v string) {
			d.Odometer = m.optional(v)
		}, StateAwaitingTemp, reply(m.text.AskTemp, nil))
	case StateAwaitingTemp:
		return m.freeText(s, in, m.text.AskTemp, func(d *Draft, v string) {
			d.Temp = m.optional(v)
		}, StateAwaitingPhotos, reply(m.text.AskPhotos, nil))
	case StateAwaitingPhotos:
		return m.photos(s, in)
	case StateAwaitingNotes:
		return m.notes(s, in)
	case StateConfirming:
		return m.confirm(s, in)
	default:
		s.State = StateIdle
		s.Draft = Draft{}
		return s, []Effect{reply(m.text.NotUnderstood, nil)}
	}
}

func (m *Machine) idle(s Session, in Input) (Session, []Effect) {
	switch in.Kind {
	case InputLocation:
		return s, []Effect{reply(m.text.LocationAck, nil)}
	case InputText:
		if mode, ok := m.matchMode(in.Text); ok && s.Alias != "" {
			return m.begin(s, mode)
		}
	}
	return s, []Effect{reply(m.text.NotUnderstood, nil)}
}

func (m *Machine) auth(s Session, in Input) (Session, []Effect) {
	switch in.Kind {
	case InputLocation:
		return s, []Effect{reply(m.text.LocationAck, nil)}
	case InputPhoto:
		return s, []Effect{reply(m.text.AskPIN, nil)}
	}
	alias, ok := m.pins.Match(strings.TrimSpace(in.Text))
	if !ok {
		return s, []Effect{reply(m.text.BadPIN, nil)}
	}
	s.Alias = alias
	s.State = StateAwaitingMode
	return s, []Effect{
		RegisterDriver{Alias: alias},
		reply(m.text.accepted(alias)+"\n"+m.text.Welcome, m.text.MainKeyboard()),
	}
}

func (m *Machine) mode(s Session, in Input) (Session, []Effect) {
	if in.Kind == InputLocation {
		return s, []Effect{reply(m.text.LocationAck, nil)}
	}
	if in.Kind == InputText {
		if mode, ok := m.matchMode(in.Text); ok {
			return m.begin(s, mode)
		}
	}
	return s, []Effect{reply(m.text.ChooseMode, m.text.MainKeyboard())}
}

func (m *Machine) begin(s Session, mode models.Mode) (Session, []Effect) {
	s.Draft = Draft{Mode: mode}
	s.State = StateAwaitingLoad
	return s, []Effect{reply(m.text.AskLoad, removeKeyboard())}
}

// freeText handles the states that take one line of free text and move on.
func (m *Machine) freeText(s Session, in Input, prompt string, set func(*Draft, string), next State, ask Effect) (Session, []Effect) {
	switch in.Kind {
	case InputLocation:
		return s, []Effect{reply(m.text.LocationAck, nil)}
	case InputPhoto:
		return s, []Effect{reply(prompt, nil)}
	}
	set(&s.Draft, strings.TrimSpace(in.Text))
	s.State = next
	return s, []Effect{ask}
}

func (m *Machine) location(s Session, in Input) (Session, []Effect) {
	switch in.Kind {
	case InputPhoto:
		return s, []Effect{reply(m.text.AskLocation, m.text.locationKeyboard())}
	case InputLocation:
		s.Draft.Location = fmt.Sprintf("%.6f,%.6f", in.Location.Latitude, in.Location.Longitude)
	default:
		s.Draft.Location = strings.TrimSpace(in.Text)
	}
	s.State = StateAwaitingOdometer
	return s, []Effect{reply(m.text.AskOdometer, removeKeyboard())}
}

func (m *Machine) photos(s Session, in Input) (Session, []Effect) {
	switch in.Kind {
	case InputLocation:
		return s, []Effect{reply(m.text.LocationAck, nil)}
	case InputPhoto:
		if len(s.Draft.Photos) >= MaxPhotos {
			return s, []Effect{reply(m.text.PhotoLimit, nil)}
		}
		s.Draft.Photos = append(s.Draft.Photos, in.PhotoRef)
		return s, []Effect{reply(m.text.photoSaved(len(s.Draft.Photos), MaxPhotos), nil)}
	}

	token := strings.TrimSpace(in.Text)
	finished := strings.EqualFold(token, m.text.DoneToken) || strings.EqualFold(token, m.text.SkipToken)
	if !finished && m.strict {
		return s, []Effect{reply(m.text.PhotosHint, nil)}
	}
	// Without strict mode any other text closes the photo step.
	s.State = StateAwaitingNotes
	return s, []Effect{reply(m.text.AskNotes, nil)}
}

func (m *Machine) notes(s Session, in Input) (Session, []Effect) {
	switch in.Kind {
	case InputLocation:
		return s, []Effect{reply(m.text.LocationAck, nil)}
	case InputPhoto:
		return s, []Effect{reply(m.text.AskNotes, nil)}
	}
	s.Draft.Notes = m.optional(strings.TrimSpace(in.Text))
	s.Draft.TSLocal = in.At.In(m.zone).Format(TimestampLayout)

	preview, err := summary.Preview(s.Event())
	if err != nil {
		reset := Session{UserID: s.UserID, ChatID: s.ChatID, Alias: s.Alias}
		return reset, []Effect{DiscardDraft{}, reply(m.text.PreviewFailed, m.text.MainKeyboard())}
	}
	s.State = StateConfirming
	return s, []Effect{replyHTML(preview, m.text.confirmKeyboard())}
}

func (m *Machine) confirm(s Session, in Input) (Session, []Effect) {
	if in.Kind == InputLocation {
		return s, []Effect{reply(m.text.LocationAck, nil)}
	}
	if in.Kind == InputText {
		lower := strings.ToLower(in.Text)
		done := Session{UserID: s.UserID, ChatID: s.ChatID, Alias: s.Alias}
		if strings.Contains(lower, m.text.CancelToken) {
			return done, []Effect{DiscardDraft{}, reply(m.text.Cancelled, m.text.MainKeyboard())}
		}
		if strings.Contains(lower, m.text.SendToken) {
			return done, []Effect{CommitEvent{}, reply(m.text.Saved, m.text.MainKeyboard())}
		}
	}
	return s, []Effect{reply(m.text.ConfirmChoose, m.text.confirmKeyboard())}
}

func (m *Machine) matchMode(text string) (models.Mode, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, m.text.ModeInToken):
		return models.ModeIn, true
	case strings.Contains(lower, m.text.ModeOutToken):
		return models.ModeOut, true
	}
	return "", false
}

func (m *Machine) optional(v string) *string {
	if strings.EqualFold(v, m.text.SkipToken) {
		return nil
	}
	return &v
}
