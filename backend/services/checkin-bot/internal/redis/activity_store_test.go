package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fleetcheck/backend/services/checkin-bot/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), srv
}

func TestSaveAndGetMany(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	ev := models.Event{ID: 12, UserID: 42, Mode: models.ModeOut, TSLocal: "2026-03-01 12:00:00 EET", LoadID: "PO-551"}
	if err := store.Save(ctx, ActivityFromEvent(ev)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.GetMany(ctx, []int64{42})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	activity, ok := got[42]
	if !ok || activity.EventID != 12 || activity.Mode != models.ModeOut || activity.LoadID != "PO-551" {
		t.Fatalf("unexpected activity %+v", got)
	}
}

func TestGetManyEmptyInput(t *testing.T) {
	store, _ := newTestStore(t, 0)
	got, err := store.GetMany(context.Background(), nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %+v, %v", got, err)
	}
}

func TestTTLExpires(t *testing.T) {
	store, srv := newTestStore(t, time.Minute)
	ctx := context.Background()
	if err := store.Save(ctx, Activity{UserID: 5, EventID: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	srv.FastForward(2 * time.Minute)
	got, err := store.GetMany(ctx, []int64{5})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected expired entry, got %+v, %v", got, err)
	}
}

func TestGetManySkipsMissing(t *testing.T) {
	store, srv := newTestStore(t, 0)
	ctx := context.Background()
	if err := store.Save(ctx, Activity{UserID: 1, EventID: 10}); err != nil {
		t.Fatalf("save: %v", err)
	}
	srv.Set(store.key(3), "{broken")

	got, err := store.GetMany(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(got) != 1 || got[1].EventID != 10 {
		t.Fatalf("unexpected activities %+v", got)
	}
}
