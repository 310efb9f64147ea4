package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// Activity is the latest check event of one driver.
type Activity struct {
	UserID  int64       `json:"user_id"`
	EventID int64       `json:"event_id"`
	Mode    models.Mode `json:"mode"`
	TSLocal string      `json:"ts_local"`
	LoadID  string      `json:"load_id"`
}

// ActivityFromEvent keeps the fields shown in driver listings.
func ActivityFromEvent(ev models.Event) Activity {
	return Activity{UserID: ev.UserID, EventID: ev.ID, Mode: ev.Mode, TSLocal: ev.TSLocal, LoadID: ev.LoadID}
}

// Store caches the last activity per driver.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store. ttl of zero keeps keys forever.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(userID int64) string {
	return fmt.Sprintf("checkin:last:%d", userID)
}

// Save overwrites the driver's activity.
func (s *Store) Save(ctx context.Context, activity Activity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(activity.UserID), data, s.ttl).Err()
}

// GetMany returns the cached activities keyed by user id, skipping missing and corrupt entries.
func (s *Store) GetMany(ctx context.Context, userIDs []int64) (map[int64]Activity, error) {
	out := make(map[int64]Activity, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var activity Activity
		if err := json.Unmarshal([]byte(raw), &activity); err != nil {
			continue
		}
		out[userIDs[i]] = activity
	}
	return out, nil
}
