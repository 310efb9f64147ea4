package conversation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/metrics"
	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// Checkins is what the engine needs from the check-in service.
type Checkins interface {
	RegisterDriver(ctx context.Context, userID int64, alias string) error
	LookupDriver(ctx context.Context, userID int64) (models.Driver, bool, error)
	Commit(ctx context.Context, ev models.Event) (models.Event, error)
}

// Engine owns the sessions and runs the effects the machine asks for.
type Engine struct {
	machine   *Machine
	sessions  *SessionStore
	checkins  Checkins
	messenger chat.Messenger
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewEngine(machine *Machine, sessions *SessionStore, checkins Checkins, messenger chat.Messenger, m *metrics.Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		machine:   machine,
		sessions:  sessions,
		checkins:  checkins,
		messenger: messenger,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Start handles /start and discards any draft of the user.
func (e *Engine) Start(ctx context.Context, u chat.Update) error {
	current, err := e.fresh(ctx, u)
	if err != nil {
		return err
	}
	next, effects := e.machine.Start(current)
	return e.apply(ctx, current, next, effects)
}

// Handle feeds a non-command update into the user's conversation.
func (e *Engine) Handle(ctx context.Context, u chat.Update) error {
	current, ok := e.sessions.Get(u.UserID)
	if !ok {
		var err error
		if current, err = e.fresh(ctx, u); err != nil {
			return err
		}
	}
	current.ChatID = u.ChatID

	in := inputFrom(u, e.now())
	next, effects := e.machine.Step(current, in)
	if current.State == StateAwaitingAuth && in.Kind == InputText && next.Alias == "" {
		e.metrics.AuthFailed()
		e.logger.Info("pin rejected", zap.Int64("user_id", u.UserID))
	}
	return e.apply(ctx, current, next, effects)
}

func (e *Engine) fresh(ctx context.Context, u chat.Update) (Session, error) {
	s := Session{UserID: u.UserID, ChatID: u.ChatID, State: StateIdle}
	driver, found, err := e.checkins.LookupDriver(ctx, u.UserID)
	if err != nil {
		return s, fmt.Errorf("lookup driver %d: %w", u.UserID, err)
	}
	if found {
		s.Alias = driver.Alias
	}
	return s, nil
}

// apply runs effects in order. Store effects come before replies, so when one fails the
// user only gets the failure notice and keeps the previous session.
func (e *Engine) apply(ctx context.Context, prev, next Session, effects []Effect) error {
	for _, effect := range effects {
		switch eff := effect.(type) {
		case RegisterDriver:
			if err := e.checkins.RegisterDriver(ctx, next.UserID, eff.Alias); err != nil {
				e.reply(ctx, prev.ChatID, chat.Message{Text: e.machine.text.RegisterFailed})
				return fmt.Errorf("register driver %d: %w", next.UserID, err)
			}
			e.logger.Info("driver registered", zap.Int64("user_id", next.UserID), zap.String("alias", eff.Alias))
		case CommitEvent:
			ev, err := e.checkins.Commit(ctx, prev.Event())
			if err != nil {
				e.reply(ctx, prev.ChatID, chat.Message{Text: e.machine.text.SaveFailed})
				return fmt.Errorf("commit event for %d: %w", prev.UserID, err)
			}
			e.logger.Info("event committed",
				zap.Int64("user_id", ev.UserID),
				zap.Int64("event_id", ev.ID),
				zap.String("mode", string(ev.Mode)),
			)
		case DiscardDraft:
			e.logger.Debug("draft discarded", zap.Int64("user_id", prev.UserID), zap.Stringer("state", prev.State))
		case Reply:
			e.reply(ctx, next.ChatID, eff.Message)
		}
	}

	if next.State == StateIdle {
		e.sessions.Delete(next.UserID)
	} else {
		e.sessions.Put(next)
	}
	e.metrics.SetSessions(e.sessions.Len())
	return nil
}

// reply failures are logged only; the conversation state still advances.
func (e *Engine) reply(ctx context.Context, chatID int64, msg chat.Message) {
	if err := e.messenger.SendText(ctx, chatID, msg); err != nil {
		e.logger.Warn("send reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
