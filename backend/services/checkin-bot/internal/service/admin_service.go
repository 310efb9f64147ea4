package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/models"
	redisstore "fleetcheck/backend/services/checkin-bot/internal/redis"
)

// DefaultExportDays is used when no day count is given.
const DefaultExportDays = 14

// ExportColumns is the CSV header of an event export.
var ExportColumns = []string{
	"id", "created_at_utc", "ts_local", "mode", "user_id", "driver_alias", "load_id", "trailer",
	"location", "odometer", "temp", "photos", "notes",
}

// DriverStatus is a registered driver with the last cached activity, if any.
type DriverStatus struct {
	models.Driver
	Last *redisstore.Activity `json:"last,omitempty"`
}

// Export is a rendered CSV document.
type Export struct {
	FileName string
	Data     []byte
	Count    int
}

// AdminService backs the admin chat commands and HTTP routes.
type AdminService struct {
	drivers  DriverStore
	events   EventStore
	settings SettingsStore
	cache    ActivityCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdminService builds AdminService. cache may be nil.
func NewAdminService(drivers DriverStore, events EventStore, settings SettingsStore, cache ActivityCache, logger *zap.Logger) *AdminService {
	return &AdminService{
		drivers:  drivers,
		events:   events,
		settings: settings,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// SetDispatchTarget stores the dispatcher chat id. An env override still takes precedence.
func (s *AdminService) SetDispatchTarget(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("%w: chat id must be non-zero", ErrInvalidArgument)
	}
	if err := s.settings.Set(ctx, models.SettingDispatchChatID, strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.logger.Info("dispatch target updated", zap.Int64("chat_id", chatID))
	return nil
}

// ListDrivers returns drivers sorted by alias.
func (s *AdminService) ListDrivers(ctx context.Context) ([]DriverStatus, error) {
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DriverStatus, len(drivers))
	for i, d := range drivers {
		out[i] = DriverStatus{Driver: d}
	}
	if s.cache == nil || len(drivers) == 0 {
		return out, nil
	}

	ids := make([]int64, len(drivers))
	for i, d := range drivers {
		ids[i] = d.UserID
	}
	activity, err := s.cache.GetMany(ctx, ids)
	if err != nil {
		s.logger.Warn("read activity cache failed", zap.Error(err))
		return out, nil
	}
	for i := range out {
		if a, ok := activity[out[i].UserID]; ok {
			a := a
			out[i].Last = &a
		}
	}
	return out, nil
}

// ExportEvents renders every event created in the trailing days*24h window as CSV.
func (s *AdminService) ExportEvents(ctx context.Context, days int) (Export, error) {
	if days <= 0 {
		return Export{}, fmt.Errorf("%w: days must be positive", ErrInvalidArgument)
	}
	cutoff := exportCutoff(s.now().UTC(), days)
	events, err := s.events.ListSince(ctx, cutoff)
	if err != nil {
		return Export{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ExportColumns); err != nil {
		return Export{}, err
	}
	for _, ev := range events {
		record, err := exportRecord(ev)
		if err != nil {
			return Export{}, err
		}
		if err := w.Write(record); err != nil {
			return Export{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Export{}, err
	}

	return Export{
		FileName: fmt.Sprintf("events_last_%dd.csv", days),
		Data:     buf.Bytes(),
		Count:    len(events),
	}, nil
}

func exportRecord(ev models.Event) ([]string, error) {
	photos := ev.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, err
	}
	return []string{
		strconv.FormatInt(ev.ID, 10),
		ev.CreatedAtUTC.UTC().Format(time.RFC3339Nano),
		ev.TSLocal,
		string(ev.Mode),
		strconv.FormatInt(ev.UserID, 10),
		ev.DriverAlias,
		ev.LoadID,
		ev.Trailer,
		ev.Location,
		deref(ev.Odometer),
		deref(ev.Temp),
		string(photosJSON),
		deref(ev.Notes),
	}, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// exportCutoff is now minus days*24h, clamped to the Unix epoch so large day counts cannot
// overflow time.Duration.
func exportCutoff(now time.Time, days int) time.Time {
	epoch := time.Unix(0, 0).UTC()
	if int64(days) > int64(now.Sub(epoch)/(24*time.Hour)) {
		return epoch
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
