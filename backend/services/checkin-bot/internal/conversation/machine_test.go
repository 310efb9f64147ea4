package conversation

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/models"
)

type stubPins map[string]string

func (p stubPins) Match(pin string) (string, bool) {
	alias, ok := p[pin]
	return alias, ok
}

var confirmAt = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestMachine(t *testing.T, strict bool) *Machine {
	t.Helper()
	zone, err := time.LoadLocation("Europe/Chisinau")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return NewMachine(stubPins{"3333": "V3"}, Options{Zone: zone, StrictPhotoDone: strict})
}

func text(s string) Input { return Input{Kind: InputText, Text: s, At: confirmAt} }

func replies(effects []Effect) []string {
	var out []string
	for _, e := range effects {
		if r, ok := e.(Reply); ok {
			out = append(out, r.Message.Text)
		}
	}
	return out
}

func hasEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

func TestStartUnregisteredAsksForPIN(t *testing.T) {
	m := newTestMachine(t, false)
	s, effects := m.Start(Session{UserID: 1, ChatID: 1})
	if s.State != StateAwaitingAuth {
		t.Fatalf("expected awaiting_auth, got %s", s.State)
	}
	if got := replies(effects); len(got) != 1 || got[0] != m.Locale().AskPIN {
		t.Fatalf("unexpected replies %v", got)
	}
}

func TestStartDiscardsDraft(t *testing.T) {
	m := newTestMachine(t, false)
	mid := Session{UserID: 1, Alias: "V3", State: StateAwaitingTemp, Draft: Draft{Mode: models.ModeIn, LoadID: "L"}}
	s, _ := m.Start(mid)
	if s.State != StateAwaitingMode || s.Draft.LoadID != "" || s.Draft.Mode != "" {
		t.Fatalf("expected fresh session, got %+v", s)
	}
}

func TestBadPINStaysInAuth(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 1, State: StateAwaitingAuth}
	for _, pin := range []string{"1234", "333", "33333", ""} {
		next, effects := m.Step(s, text(pin))
		if next.State != StateAwaitingAuth || next.Alias != "" {
			t.Fatalf("pin %q: unexpected session %+v", pin, next)
		}
		if hasEffect[RegisterDriver](effects) {
			t.Fatalf("pin %q must not register", pin)
		}
	}
}

func TestModeRequiresButton(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 1, Alias: "V3", State: StateAwaitingMode}
	next, effects := m.Step(s, text("hello"))
	if next.State != StateAwaitingMode {
		t.Fatalf("expected to stay, got %s", next.State)
	}
	if got := replies(effects); got[0] != m.Locale().ChooseMode {
		t.Fatalf("unexpected reply %v", got)
	}
	next, _ = m.Step(s, text("CHECK IN please"))
	if next.State != StateAwaitingLoad || next.Draft.Mode != models.ModeIn {
		t.Fatalf("expected IN flow, got %+v", next)
	}
}

func TestIdleModeButtonStartsFlowForRegisteredDriver(t *testing.T) {
	m := newTestMachine(t, false)
	next, _ := m.Step(Session{UserID: 1, Alias: "V3"}, text("🏁 Check Out"))
	if next.State != StateAwaitingLoad || next.Draft.Mode != models.ModeOut {
		t.Fatalf("unexpected session %+v", next)
	}

	next, effects := m.Step(Session{UserID: 2}, text("🏁 Check Out"))
	if next.State != StateIdle || replies(effects)[0] != m.Locale().NotUnderstood {
		t.Fatalf("unregistered user must not start the flow: %+v", next)
	}
}

func TestUnexpectedLocationIsAcknowledged(t *testing.T) {
	m := newTestMachine(t, false)
	loc := Input{Kind: InputLocation, Location: chat.Location{Latitude: 1, Longitude: 2}}
	for _, state := range []State{StateIdle, StateAwaitingMode, StateAwaitingLoad, StateAwaitingPhotos, StateConfirming} {
		s := Session{UserID: 1, Alias: "V3", State: state}
		next, effects := m.Step(s, loc)
		if next.State != state {
			t.Fatalf("%s: state changed to %s", state, next.State)
		}
		if got := replies(effects); len(got) != 1 || got[0] != m.Locale().LocationAck {
			t.Fatalf("%s: unexpected replies %v", state, got)
		}
	}
}

func TestPhotoCapAndFallback(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 1, Alias: "V3", State: StateAwaitingPhotos, Draft: Draft{Mode: models.ModeIn}}
	for i := 0; i < 5; i++ {
		s, _ = m.Step(s, Input{Kind: InputPhoto, PhotoRef: "p"})
	}
	if len(s.Draft.Photos) != MaxPhotos {
		t.Fatalf("expected %d photos, got %d", MaxPhotos, len(s.Draft.Photos))
	}
	_, effects := m.Step(s, Input{Kind: InputPhoto, PhotoRef: "p"})
	if replies(effects)[0] != m.Locale().PhotoLimit {
		t.Fatalf("expected limit warning, got %v", replies(effects))
	}

	next, _ := m.Step(s, text("whatever"))
	if next.State != StateAwaitingNotes {
		t.Fatalf("unrecognised text should close photos, got %s", next.State)
	}
}

func TestStrictPhotoDoneRepromptsOnOtherText(t *testing.T) {
	m := newTestMachine(t, true)
	s := Session{UserID: 1, Alias: "V3", State: StateAwaitingPhotos}
	next, effects := m.Step(s, text("whatever"))
	if next.State != StateAwaitingPhotos {
		t.Fatalf("expected to stay in photos, got %s", next.State)
	}
	if replies(effects)[0] != m.Locale().PhotosHint {
		t.Fatalf("unexpected reply %v", replies(effects))
	}
	next, _ = m.Step(s, text("ГОТОВО"))
	if next.State != StateAwaitingNotes {
		t.Fatalf("done token should advance, got %s", next.State)
	}
}

func TestSkipAllOptionalFields(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 7, Alias: "V3", State: StateAwaitingMode}
	for _, in := range []string{"✅ Check In", "L-1", "T-1", "Main st 1", "Пропуск", "пропуск", "пропуск", "пропуск"} {
		s, _ = m.Step(s, text(in))
	}
	if s.State != StateConfirming {
		t.Fatalf("expected confirming, got %s", s.State)
	}
	ev := s.Event()
	if ev.Mode != models.ModeIn || ev.Odometer != nil || ev.Temp != nil || ev.Notes != nil || len(ev.Photos) != 0 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Location != "Main st 1" {
		t.Fatalf("unexpected location %q", ev.Location)
	}
}

func TestConfirmingCapturesLocalTimestamp(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 7, Alias: "V3", State: StateAwaitingNotes, Draft: Draft{Mode: models.ModeIn, LoadID: "L", Trailer: "T", Location: "x"}}
	next, effects := m.Step(s, text("fine"))
	if next.Draft.TSLocal != "2026-03-01 12:30:00 EET" {
		t.Fatalf("unexpected ts_local %q", next.Draft.TSLocal)
	}
	r, ok := effects[0].(Reply)
	if !ok || !r.Message.HTML || !strings.Contains(r.Message.Text, "<b>CHECK IN</b>") {
		t.Fatalf("expected html preview, got %+v", effects)
	}
}

func TestConfirmingCancelAndSend(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 7, Alias: "V3", State: StateConfirming, Draft: Draft{Mode: models.ModeIn, LoadID: "L"}}

	next, effects := m.Step(s, text("maybe"))
	if next.State != StateConfirming || replies(effects)[0] != m.Locale().ConfirmChoose {
		t.Fatalf("expected re-prompt, got %+v", next)
	}

	next, effects = m.Step(s, text("Отмена"))
	if next.State != StateIdle || next.Draft.LoadID != "" || !hasEffect[DiscardDraft](effects) || hasEffect[CommitEvent](effects) {
		t.Fatalf("cancel should discard, got %+v %v", next, effects)
	}

	next, effects = m.Step(s, text("Отправить"))
	if next.State != StateIdle || len(effects) == 0 {
		t.Fatalf("send should finish the flow, got %+v", next)
	}
	if _, ok := effects[0].(CommitEvent); !ok {
		t.Fatalf("commit must run before replies, got %T", effects[0])
	}
}

func TestStepDoesNotMutateInputSession(t *testing.T) {
	m := newTestMachine(t, false)
	s := Session{UserID: 1, Alias: "V3", State: StateAwaitingPhotos, Draft: Draft{Photos: make([]string, 1, 3)}}
	s.Draft.Photos[0] = "a"
	_, _ = m.Step(s, Input{Kind: InputPhoto, PhotoRef: "b"})
	if len(s.Draft.Photos) != 1 || s.Draft.Photos[:2][1] == "b" {
		t.Fatalf("input session was modified: %v", s.Draft.Photos)
	}
}
