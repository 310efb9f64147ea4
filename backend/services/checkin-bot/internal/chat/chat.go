// Package chat holds the transport-neutral view of an inbound message and the outbound
// operations the bot needs from a messaging platform.
package chat

import "context"

// Location is a shared live location.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Update is one inbound message. Exactly one of Command, Location, PhotoRef or Text is
// meaningful; Text may be empty.
type Update struct {
	UserID   int64
	ChatID   int64
	Command  string
	Args     []string
	Text     string
	Location *Location
	PhotoRef string
}

// IsCommand reports whether the update is a slash command.
func (u Update) IsCommand() bool {
	return u.Command != ""
}

// Button is a reply keyboard button.
type Button struct {
	Text            string
	RequestLocation bool
}

// Keyboard is the reply keyboard attached to a message. A nil *Keyboard leaves the
// client's current keyboard alone; Remove hides it.
type Keyboard struct {
	Rows    [][]Button
	OneTime bool
	Remove  bool
}

// Message is an outbound text message.
type Message struct {
	Text     string
	HTML     bool
	Keyboard *Keyboard
}

// Document is an outbound file.
type Document struct {
	FileName string
	Data     []byte
	Caption  string
}

// Messenger delivers messages to a conversation target.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, msg Message) error
	SendPhotoGroup(ctx context.Context, chatID int64, photoRefs []string) error
	SendDocument(ctx context.Context, chatID int64, doc Document) error
}
