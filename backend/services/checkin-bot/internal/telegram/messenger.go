package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

// Messenger implements chat.Messenger on top of the Bot API. The client library has no context
// support, so each request runs in its own goroutine and is abandoned once ctx is done. The
// HTTP client timeout set in NewAPI bounds the abandoned request.
type Messenger struct {
	api API
}

func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, msg chat.Message) error {
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}
	if markup := replyMarkup(msg.Keyboard); markup != nil {
		out.ReplyMarkup = markup
	}
	if err := call(ctx, func() error { _, err := m.api.Send(out); return err }); err != nil {
		return fmt.Errorf("telegram: send message to %d: %w", chatID, err)
	}
	return nil
}

func (m *Messenger) SendPhotoGroup(ctx context.Context, chatID int64, photoRefs []string) error {
	if len(photoRefs) == 0 {
		return nil
	}
	media := make([]interface{}, 0, len(photoRefs))
	for _, ref := range photoRefs {
		media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(ref)))
	}
	group := tgbotapi.NewMediaGroup(chatID, media)
	if err := call(ctx, func() error { _, err := m.api.SendMediaGroup(group); return err }); err != nil {
		return fmt.Errorf("telegram: send media group to %d: %w", chatID, err)
	}
	return nil
}

func (m *Messenger) SendDocument(ctx context.Context, chatID int64, doc chat.Document) error {
	out := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: doc.FileName, Bytes: doc.Data})
	out.Caption = doc.Caption
	if err := call(ctx, func() error { _, err := m.api.Send(out); return err }); err != nil {
		return fmt.Errorf("telegram: send document to %d: %w", chatID, err)
	}
	return nil
}

// call runs fn and returns its error, or ctx.Err() if ctx ends first.
func call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func replyMarkup(kb *chat.Keyboard) interface{} {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			if b.RequestLocation {
				buttons = append(buttons, tgbotapi.NewKeyboardButtonLocation(b.Text))
			} else {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
			}
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = kb.OneTime
	return markup
}
