package handlers

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

const setDispatchUsage = "Usage: /setdispatch <chat_id>"

// NewSetDispatchHandler handles /setdispatch <chat_id>.
func NewSetDispatchHandler(admin AdminAPI, messenger chat.Messenger, logger *zap.Logger) chat.HandlerFunc {
	return func(ctx context.Context, u chat.Update) error {
		if len(u.Args) != 1 {
			return sendText(ctx, messenger, u.ChatID, setDispatchUsage)
		}
		chatID, err := strconv.ParseInt(u.Args[0], 10, 64)
		if err != nil || chatID == 0 {
			return sendText(ctx, messenger, u.ChatID, setDispatchUsage)
		}

		if err := admin.SetDispatchTarget(ctx, chatID); err != nil {
			logger.Error("failed to store dispatch target", zap.Int64("user_id", u.UserID), zap.Error(err))
			return err
		}
		return sendText(ctx, messenger, u.ChatID, fmt.Sprintf("Dispatch chat set to %d", chatID))
	}
}
