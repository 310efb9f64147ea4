package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/models"
	redisstore "fleetcheck/backend/services/checkin-bot/internal/redis"
	"fleetcheck/backend/services/checkin-bot/internal/repository"
)

type memDrivers struct {
	mu      sync.Mutex
	drivers map[int64]string
	err     error
}

func newMemDrivers() *memDrivers {
	return &memDrivers{drivers: make(map[int64]string)}
}

func (m *memDrivers) Upsert(_ context.Context, d models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.drivers[d.UserID] = d.Alias
	return nil
}

func (m *memDrivers) Get(_ context.Context, userID int64) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alias, ok := m.drivers[userID]
	if !ok {
		return nil, repository.ErrDriverNotFound
	}
	return &models.Driver{UserID: userID, Alias: alias}, nil
}

func (m *memDrivers) List(context.Context) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Driver, 0, len(m.drivers))
	for id, alias := range m.drivers {
		out = append(out, models.Driver{UserID: id, Alias: alias})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

type memEvents struct {
	mu     sync.Mutex
	events []models.Event
	err    error
	now    time.Time
}

func (m *memEvents) Insert(_ context.Context, ev *models.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	ev.ID = int64(len(m.events) + 1)
	ev.CreatedAtUTC = m.now
	if ev.Photos == nil {
		ev.Photos = []string{}
	}
	m.events = append(m.events, *ev)
	return ev.ID, nil
}

func (m *memEvents) ListSince(_ context.Context, cutoff time.Time) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, ev := range m.events {
		if !ev.CreatedAtUTC.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", repository.ErrSettingNotFound
	}
	return v, nil
}

func (m *memSettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type memCache struct {
	mu    sync.Mutex
	saved map[int64]redisstore.Activity
}

func (m *memCache) Save(_ context.Context, a redisstore.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[int64]redisstore.Activity)
	}
	m.saved[a.UserID] = a
	return nil
}

func (m *memCache) GetMany(_ context.Context, ids []int64) (map[int64]redisstore.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]redisstore.Activity)
	for _, id := range ids {
		if a, ok := m.saved[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type recordingFeed struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *recordingFeed) Broadcast(ev models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type recordingMessenger struct {
	mu       sync.Mutex
	texts    map[int64][]chat.Message
	groups   map[int64][][]string
	sendErr  error
	blockFor time.Duration
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{texts: make(map[int64][]chat.Message), groups: make(map[int64][][]string)}
}

func (m *recordingMessenger) SendText(ctx context.Context, chatID int64, msg chat.Message) error {
	if m.blockFor > 0 {
		select {
		case <-time.After(m.blockFor):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.texts[chatID] = append(m.texts[chatID], msg)
	return nil
}

func (m *recordingMessenger) SendPhotoGroup(_ context.Context, chatID int64, refs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[chatID] = append(m.groups[chatID], refs)
	return nil
}

func (m *recordingMessenger) SendDocument(context.Context, int64, chat.Document) error {
	return errors.New("not used")
}
