package handlers

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/service"
)

const exportUsage = "Usage: /exportcsv [days]"

// NewExportCSVHandler handles /exportcsv [days].
func NewExportCSVHandler(admin AdminAPI, messenger chat.Messenger, logger *zap.Logger) chat.HandlerFunc {
	return func(ctx context.Context, u chat.Update) error {
		days := service.DefaultExportDays
		if len(u.Args) > 0 {
			parsed, err := strconv.Atoi(u.Args[0])
			if err != nil || parsed <= 0 {
				return sendText(ctx, messenger, u.ChatID, exportUsage)
			}
			days = parsed
		}

		export, err := admin.ExportEvents(ctx, days)
		if err != nil {
			logger.Error("failed to export events", zap.Int("days", days), zap.Error(err))
			return err
		}
		return messenger.SendDocument(ctx, u.ChatID, chat.Document{
			FileName: export.FileName,
			Data:     export.Data,
			Caption:  fmt.Sprintf("Exported %d events", export.Count),
		})
	}
}
