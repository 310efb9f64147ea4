package handlers

import (
	"context"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/service"
)

// AdminAPI is the admin service as seen by the chat commands.
type AdminAPI interface {
	SetDispatchTarget(ctx context.Context, chatID int64) error
	ListDrivers(ctx context.Context) ([]service.DriverStatus, error)
	ExportEvents(ctx context.Context, days int) (service.Export, error)
}

// AdminOnly drops updates from anyone outside admins without answering.
func AdminOnly(admins service.AdminSet, logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, u chat.Update) error {
			if !admins.Contains(u.UserID) {
				logger.Debug("admin command ignored", zap.Int64("user_id", u.UserID), zap.String("command", u.Command))
				return nil
			}
			return next(ctx, u)
		}
	}
}

func sendText(ctx context.Context, messenger chat.Messenger, chatID int64, text string) error {
	return messenger.SendText(ctx, chatID, chat.Message{Text: text})
}
