package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

// ConvertUpdate maps a Telegram update to a chat.Update. Updates that carry no text, location
// or photo are reported as not ok.
func ConvertUpdate(upd tgbotapi.Update) (chat.Update, bool) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return chat.Update{}, false
	}
	u := chat.Update{UserID: msg.From.ID, ChatID: msg.Chat.ID}

	switch {
	case msg.IsCommand():
		u.Command = msg.Command()
		u.Args = strings.Fields(msg.CommandArguments())
	case msg.Location != nil:
		u.Location = &chat.Location{Latitude: msg.Location.Latitude, Longitude: msg.Location.Longitude}
	case len(msg.Photo) > 0:
		u.PhotoRef = largestPhoto(msg.Photo).FileID
	case msg.Text != "":
		u.Text = msg.Text
	default:
		return chat.Update{}, false
	}
	return u, true
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, size := range sizes[1:] {
		if size.Width*size.Height > best.Width*best.Height {
			best = size
		}
	}
	return best
}

// Kind names the update for metrics.
func Kind(u chat.Update) string {
	switch {
	case u.IsCommand():
		return "command"
	case u.Location != nil:
		return "location"
	case u.PhotoRef != "":
		return "photo"
	default:
		return "text"
	}
}
