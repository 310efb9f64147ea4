package conversation

import "fleetcheck/backend/services/checkin-bot/internal/chat"

// Effect is a side effect requested by a transition. The engine runs them in order.
type Effect interface {
	effect()
}

// Reply sends a message back to the user's chat.
type Reply struct {
	Message chat.Message
}

// RegisterDriver stores the user_id under Alias.
type RegisterDriver struct {
	Alias string
}

// CommitEvent persists the draft and notifies the dispatcher.
type CommitEvent struct{}

// DiscardDraft drops the session without saving anything.
type DiscardDraft struct{}

func (Reply) effect()          {}
func (RegisterDriver) effect() {}
func (CommitEvent) effect()    {}
func (DiscardDraft) effect()   {}

func reply(text string, kb *chat.Keyboard) Reply {
	return Reply{Message: chat.Message{Text: text, Keyboard: kb}}
}

func replyHTML(text string, kb *chat.Keyboard) Reply {
	return Reply{Message: chat.Message{Text: text, HTML: true, Keyboard: kb}}
}
