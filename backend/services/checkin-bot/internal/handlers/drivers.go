package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
)

// NewDriversHandler handles /drivers.
func NewDriversHandler(admin AdminAPI, messenger chat.Messenger, logger *zap.Logger) chat.HandlerFunc {
	return func(ctx context.Context, u chat.Update) error {
		drivers, err := admin.ListDrivers(ctx)
		if err != nil {
			logger.Error("failed to list drivers", zap.Error(err))
			return err
		}
		if len(drivers) == 0 {
			return sendText(ctx, messenger, u.ChatID, "No drivers yet.")
		}

		lines := make([]string, 0, len(drivers))
		for _, d := range drivers {
			line := fmt.Sprintf("%s: %d", d.Alias, d.UserID)
			if d.Last != nil {
				line += fmt.Sprintf(" (last %s #%d at %s)", d.Last.Mode, d.Last.EventID, d.Last.TSLocal)
			}
			lines = append(lines, line)
		}
		return sendText(ctx, messenger, u.ChatID, strings.Join(lines, "\n"))
	}
}
