// Package summary renders check events as Telegram HTML messages.
package summary

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// ErrIncompleteEvent means a required field (mode or driver alias) is missing.
var ErrIncompleteEvent = errors.New("summary: incomplete event")

const dash = "-"

// Preview renders the text shown to the driver before sending and after saving.
func Preview(ev models.Event) (string, error) {
	if err := validate(ev); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", ev.Mode.Title())
	fmt.Fprintf(&b, "Время: <code>%s</code>\n", esc(ev.TSLocal))
	fmt.Fprintf(&b, "Водитель: <b>%s</b>\n", esc(ev.DriverAlias))
	fmt.Fprintf(&b, "Load: <code>%s</code>\n", esc(ev.LoadID))
	fmt.Fprintf(&b, "Trailer: <code>%s</code>\n", esc(ev.Trailer))
	fmt.Fprintf(&b, "Location: <code>%s</code>\n", esc(ev.Location))
	fmt.Fprintf(&b, "Odometer: <code>%s</code>\n", optional(ev.Odometer))
	fmt.Fprintf(&b, "Temp: <code>%s</code>\n", optional(ev.Temp))
	fmt.Fprintf(&b, "Notes: <i>%s</i>", optional(ev.Notes))
	return b.String(), nil
}

// Dispatch renders the message posted to the dispatcher chat. ev must already carry its id.
func Dispatch(ev models.Event) (string, error) {
	if err := validate(ev); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>#%d</b> — <b>%s</b>\n", ev.ID, ev.Mode.Title())
	fmt.Fprintf(&b, "⏰ <code>%s</code>\n", esc(ev.TSLocal))
	fmt.Fprintf(&b, "👤 <b>%s</b> (id %d)\n", esc(ev.DriverAlias), ev.UserID)
	fmt.Fprintf(&b, "📦 Load: <code>%s</code>\n", esc(ev.LoadID))
	fmt.Fprintf(&b, "🚛 Trailer: <code>%s</code>\n", esc(ev.Trailer))
	fmt.Fprintf(&b, "📍 Location: <code>%s</code>\n", esc(ev.Location))
	fmt.Fprintf(&b, "📈 Odometer: <code>%s</code>\n", optional(ev.Odometer))
	fmt.Fprintf(&b, "🌡️ Reefer: <code>%s</code>\n", optional(ev.Temp))
	fmt.Fprintf(&b, "📝 Notes: <i>%s</i>", optional(ev.Notes))
	return b.String(), nil
}

func validate(ev models.Event) error {
	if !ev.Mode.Valid() {
		return fmt.Errorf("%w: mode %q", ErrIncompleteEvent, ev.Mode)
	}
	if strings.TrimSpace(ev.DriverAlias) == "" {
		return fmt.Errorf("%w: driver alias", ErrIncompleteEvent)
	}
	return nil
}

func optional(v *string) string {
	if v == nil || *v == "" {
		return dash
	}
	return esc(*v)
}

func esc(s string) string {
	return html.EscapeString(s)
}
