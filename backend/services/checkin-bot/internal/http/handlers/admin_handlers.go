package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/http/middleware"
	"fleetcheck/backend/services/checkin-bot/internal/service"
)

// AdminAPI is the admin service as seen by the HTTP handlers.
type AdminAPI interface {
	ListDrivers(ctx context.Context) ([]service.DriverStatus, error)
	ExportEvents(ctx context.Context, days int) (service.Export, error)
}

// NewDriversHandler returns GET /admin/drivers handler.
func NewDriversHandler(admin AdminAPI, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := admin.ListDrivers(r.Context())
		if err != nil {
			logger.Error("failed to list drivers", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list drivers")
			return
		}
		if drivers == nil {
			drivers = []service.DriverStatus{}
		}
		writeJSON(w, http.StatusOK, drivers)
	}
}

// NewExportHandler returns GET /admin/events.csv?days=N handler.
func NewExportHandler(admin AdminAPI, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := service.DefaultExportDays
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "days must be a positive integer")
				return
			}
			days = parsed
		}

		export, err := admin.ExportEvents(r.Context(), days)
		if errors.Is(err, service.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		if err != nil {
			logger.Error("failed to export events", zap.Int("days", days), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to export events")
			return
		}

		adminID, _ := middleware.UserIDFromContext(r.Context())
		logger.Info("events exported", zap.Int64("admin_id", adminID), zap.Int("days", days), zap.Int("count", export.Count))

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
		w.Header().Set("X-Event-Count", strconv.Itoa(export.Count))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(export.Data)
	}
}
