package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/metrics"
	"fleetcheck/backend/services/checkin-bot/internal/models"
	redisstore "fleetcheck/backend/services/checkin-bot/internal/redis"
	"fleetcheck/backend/services/checkin-bot/internal/repository"
	"fleetcheck/backend/services/checkin-bot/internal/summary"
)

const (
	defaultNotifyTimeout = 30 * time.Second
	// MaxMediaGroup is the most photos one grouped message may carry.
	MaxMediaGroup = 10
)

// DriverStore is the driver registry.
type DriverStore interface {
	Upsert(ctx context.Context, driver models.Driver) error
	Get(ctx context.Context, userID int64) (*models.Driver, error)
	List(ctx context.Context) ([]models.Driver, error)
}

// EventStore is the append-only event log.
type EventStore interface {
	Insert(ctx context.Context, ev *models.Event) (int64, error)
	ListSince(ctx context.Context, cutoff time.Time) ([]models.Event, error)
}

// SettingsStore keeps runtime settings.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ActivityCache remembers the last event per driver.
type ActivityCache interface {
	Save(ctx context.Context, activity redisstore.Activity) error
	GetMany(ctx context.Context, userIDs []int64) (map[int64]redisstore.Activity, error)
}

// Broadcaster pushes committed events to live subscribers.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// CheckinDeps groups the collaborators of CheckinService. Cache and Feed are optional.
type CheckinDeps struct {
	Drivers   DriverStore
	Events    EventStore
	Settings  SettingsStore
	Cache     ActivityCache
	Feed      Broadcaster
	Messenger chat.Messenger
	Metrics   *metrics.Metrics
}

// CheckinService registers drivers and commits their check events.
type CheckinService struct {
	deps             CheckinDeps
	dispatchOverride int64
	notifyTimeout    time.Duration
	logger           *zap.Logger
	wg               sync.WaitGroup
}

// NewCheckinService builds the service. dispatchOverride wins over the stored dispatch target when non-zero.
func NewCheckinService(deps CheckinDeps, dispatchOverride int64, notifyTimeout time.Duration, logger *zap.Logger) *CheckinService {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &CheckinService{
		deps:             deps,
		dispatchOverride: dispatchOverride,
		notifyTimeout:    notifyTimeout,
		logger:           logger,
	}
}

// RegisterDriver maps userID to alias, replacing any earlier alias.
func (s *CheckinService) RegisterDriver(ctx context.Context, userID int64, alias string) error {
	if userID == 0 || alias == "" {
		return ErrInvalidArgument
	}
	if err := s.deps.Drivers.Upsert(ctx, models.Driver{UserID: userID, Alias: alias}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// LookupDriver reports whether userID is registered.
func (s *CheckinService) LookupDriver(ctx context.Context, userID int64) (models.Driver, bool, error) {
	driver, err := s.deps.Drivers.Get(ctx, userID)
	if errors.Is(err, repository.ErrDriverNotFound) {
		return models.Driver{}, false, nil
	}
	if err != nil {
		return models.Driver{}, false, err
	}
	return *driver, true, nil
}

// Commit persists ev and then notifies everyone interested. Only the insert can fail the commit;
// cache, feed and dispatcher delivery are best effort.
func (s *CheckinService) Commit(ctx context.Context, ev models.Event) (models.Event, error) {
	if !ev.Mode.Valid() || ev.UserID == 0 {
		return models.Event{}, fmt.Errorf("%w: incomplete event", ErrInvalidArgument)
	}

	if _, err := s.deps.Events.Insert(ctx, &ev); err != nil {
		s.deps.Metrics.CommitFailed()
		s.logger.Error("insert event failed", zap.Int64("user_id", ev.UserID), zap.String("mode", string(ev.Mode)), zap.Error(err))
		return models.Event{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.deps.Metrics.Committed(string(ev.Mode))

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Save(ctx, redisstore.ActivityFromEvent(ev)); err != nil {
			s.logger.Warn("cache activity failed", zap.Int64("event_id", ev.ID), zap.Error(err))
		}
	}
	if s.deps.Feed != nil {
		s.deps.Feed.Broadcast(ev)
	}

	if target := s.ResolveDispatchTarget(ctx); target != 0 {
		s.notify(target, ev)
	}
	return ev, nil
}

// ResolveDispatchTarget returns the configured override, else the stored setting, else 0.
func (s *CheckinService) ResolveDispatchTarget(ctx context.Context) int64 {
	if s.dispatchOverride != 0 {
		return s.dispatchOverride
	}
	raw, err := s.deps.Settings.Get(ctx, models.SettingDispatchChatID)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return 0
	}
	if err != nil {
		s.logger.Warn("read dispatch target failed", zap.Error(err))
		return 0
	}
	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("stored dispatch target is not a chat id", zap.String("value", raw))
		return 0
	}
	return target
}

// notify runs detached from the driver's request so a slow dispatcher chat never delays the reply.
func (s *CheckinService) notify(target int64, ev models.Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		logger := s.logger.With(zap.Int64("event_id", ev.ID), zap.Int64("chat_id", target))
		text, err := summary.Dispatch(ev)
		if err != nil {
			s.deps.Metrics.NotifyFailed()
			logger.Warn("render dispatch summary failed", zap.Error(err))
			return
		}
		if err := s.deps.Messenger.SendText(ctx, target, chat.Message{Text: text, HTML: true}); err != nil {
			s.deps.Metrics.NotifyFailed()
			logger.Warn("dispatcher message not delivered", zap.Error(err))
			return
		}
		if len(ev.Photos) == 0 {
			return
		}
		photos := ev.Photos
		if len(photos) > MaxMediaGroup {
			photos = photos[:MaxMediaGroup]
		}
		if err := s.deps.Messenger.SendPhotoGroup(ctx, target, photos); err != nil {
			s.deps.Metrics.NotifyFailed()
			logger.Warn("dispatcher photos not delivered", zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight dispatcher notifications finish.
func (s *CheckinService) Wait() {
	s.wg.Wait()
}
