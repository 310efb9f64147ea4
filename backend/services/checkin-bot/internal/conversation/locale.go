package conversation

import (
	"fmt"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

// Locale holds every user-facing string and matched token of the form.
type Locale struct {
	AskPIN         string
	BadPIN         string
	Welcome        string
	ChooseMode     string
	AskLoad        string
	AskTrailer     string
	AskLocation    string
	AskOdometer    string
	AskTemp        string
	AskPhotos      string
	PhotosHint     string
	PhotoLimit     string
	AskNotes       string
	ConfirmChoose  string
	Saved          string
	SaveFailed     string
	RegisterFailed string
	Cancelled      string
	NotUnderstood  string
	LocationAck    string
	PreviewFailed  string

	CheckInButton  string
	CheckOutButton string
	LocationButton string
	SendButton     string
	CancelButton   string

	ModeInToken  string
	ModeOutToken string
	SkipToken    string
	DoneToken    string
	SendToken    string
	CancelToken  string
}

// DefaultLocale is the Russian wording the drivers are used to.
func DefaultLocale() Locale {
	return Locale{
		AskPIN:         "Введите ваш PIN, пожалуйста (4 цифры).",
		BadPIN:         "Неверный PIN. Попробуйте ещё раз.",
		Welcome:        "Привет! Выберите действие:",
		ChooseMode:     "Нажмите одну из кнопок ниже.",
		AskLoad:        "Номер загрузки / PO / BOL?",
		AskTrailer:     "Номер трейлера?",
		AskLocation:    "Отправьте геолокацию кнопкой 📍 или отправьте текстом адрес",
		AskOdometer:    "Одометр (км), можно пропустить — отправьте 'пропуск'.",
		AskTemp:        "Температура рефера (set/actual), например 35F/36F. Можно 'пропуск'.",
		AskPhotos:      "Фото (до 3 шт.). Когда достаточно, отправьте 'готово' или 'пропуск'.",
		PhotosHint:     "Отправьте фото или напишите 'готово' / 'пропуск'.",
		PhotoLimit:     "Уже 3 фото. Напишите 'готово' или 'пропуск'.",
		AskNotes:       "Комментарии/заметки? Можно 'пропуск'.",
		ConfirmChoose:  "Выберите: Отправить / Отмена",
		Saved:          "✅ Сохранено и отправлено диспетчеру. Хорошей дороги!",
		SaveFailed:     "Не удалось сохранить. Попробуйте отправить ещё раз.",
		RegisterFailed: "Не удалось сохранить регистрацию. Попробуйте ещё раз.",
		Cancelled:      "Отменено.",
		NotUnderstood:  "Не понял. Нажмите кнопку или используйте команды.",
		LocationAck:    "Локация принята.",
		PreviewFailed:  "Что-то пошло не так. Начните заново: /start",

		CheckInButton:  "✅ Check In",
		CheckOutButton: "🏁 Check Out",
		LocationButton: "📍 Отправить геолокацию",
		SendButton:     "Отправить",
		CancelButton:   "Отмена",

		ModeInToken:  "check in",
		ModeOutToken: "check out",
		SkipToken:    "пропуск",
		DoneToken:    "готово",
		SendToken:    "отправить",
		CancelToken:  "отмена",
	}
}

func (l Locale) accepted(alias string) string {
	return fmt.Sprintf("Принято, %s!", alias)
}

func (l Locale) hello(alias string) string {
	return fmt.Sprintf("Здравствуйте, %s!", alias)
}

func (l Locale) photoSaved(n, limit int) string {
	return fmt.Sprintf("Фото сохранено (%d/%d). Добавьте ещё или напишите '%s'.", n, limit, l.DoneToken)
}

// MainKeyboard shows the two mode buttons.
func (l Locale) MainKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Rows: [][]chat.Button{{{Text: l.CheckInButton}, {Text: l.CheckOutButton}}}}
}

func (l Locale) locationKeyboard() *chat.Keyboard {
	return &chat.Keyboard{
		Rows:    [][]chat.Button{{{Text: l.LocationButton, RequestLocation: true}}},
		OneTime: true,
	}
}

func (l Locale) confirmKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Rows: [][]chat.Button{{{Text: l.SendButton}, {Text: l.CancelButton}}}}
}

func removeKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Remove: true}
}
