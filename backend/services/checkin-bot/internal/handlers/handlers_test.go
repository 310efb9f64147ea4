package handlers

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/models"
	redisstore "fleetcheck/backend/services/checkin-bot/internal/redis"
	"fleetcheck/backend/services/checkin-bot/internal/service"
)

type fakeAdmin struct {
	dispatch  int64
	drivers   []service.DriverStatus
	exportErr error
	days      int
}

func (f *fakeAdmin) SetDispatchTarget(_ context.Context, chatID int64) error {
	f.dispatch = chatID
	return nil
}

func (f *fakeAdmin) ListDrivers(context.Context) ([]service.DriverStatus, error) {
	return f.drivers, nil
}

func (f *fakeAdmin) ExportEvents(_ context.Context, days int) (service.Export, error) {
	f.days = days
	if f.exportErr != nil {
		return service.Export{}, f.exportErr
	}
	return service.Export{FileName: "events_last_7d.csv", Data: []byte("id\n"), Count: 3}, nil
}

type fakeMessenger struct {
	texts []string
	docs  []chat.Document
}

func (f *fakeMessenger) SendText(_ context.Context, _ int64, msg chat.Message) error {
	f.texts = append(f.texts, msg.Text)
	return nil
}

func (f *fakeMessenger) SendPhotoGroup(context.Context, int64, []string) error { return nil }

func (f *fakeMessenger) SendDocument(_ context.Context, _ int64, doc chat.Document) error {
	f.docs = append(f.docs, doc)
	return nil
}

func TestAdminOnlyIgnoresOthersSilently(t *testing.T) {
	called := false
	h := chat.Chain(func(context.Context, chat.Update) error {
		called = true
		return nil
	}, AdminOnly(service.NewAdminSet([]int64{1}), zap.NewNop()))

	if err := h(context.Background(), chat.Update{UserID: 2, Command: "drivers"}); err != nil || called {
		t.Fatalf("non-admin must be ignored, called=%v err=%v", called, err)
	}
	if err := h(context.Background(), chat.Update{UserID: 1, Command: "drivers"}); err != nil || !called {
		t.Fatalf("admin must pass, called=%v err=%v", called, err)
	}
}

func TestSetDispatchHandler(t *testing.T) {
	admin := &fakeAdmin{}
	messenger := &fakeMessenger{}
	h := NewSetDispatchHandler(admin, messenger, zap.NewNop())

	_ = h(context.Background(), chat.Update{ChatID: 1, Args: []string{"abc"}})
	_ = h(context.Background(), chat.Update{ChatID: 1})
	if admin.dispatch != 0 || len(messenger.texts) != 2 || messenger.texts[0] != setDispatchUsage {
		t.Fatalf("expected usage replies, got %v", messenger.texts)
	}

	if err := h(context.Background(), chat.Update{ChatID: 1, Args: []string{"-100200"}}); err != nil {
		t.Fatalf("set dispatch: %v", err)
	}
	if admin.dispatch != -100200 {
		t.Fatalf("unexpected dispatch %d", admin.dispatch)
	}
}

func TestDriversHandler(t *testing.T) {
	messenger := &fakeMessenger{}
	admin := &fakeAdmin{}
	h := NewDriversHandler(admin, messenger, zap.NewNop())

	_ = h(context.Background(), chat.Update{ChatID: 1})
	if messenger.texts[0] != "No drivers yet." {
		t.Fatalf("unexpected empty reply %q", messenger.texts[0])
	}

	admin.drivers = []service.DriverStatus{
		{Driver: models.Driver{UserID: 10, Alias: "V1"}},
		{Driver: models.Driver{UserID: 11, Alias: "V2"}, Last: &redisstore.Activity{EventID: 4, Mode: models.ModeIn, TSLocal: "t"}},
	}
	_ = h(context.Background(), chat.Update{ChatID: 1})
	want := "V1: 10\nV2: 11 (last IN #4 at t)"
	if messenger.texts[1] != want {
		t.Fatalf("expected %q, got %q", want, messenger.texts[1])
	}
}

func TestExportCSVHandler(t *testing.T) {
	messenger := &fakeMessenger{}
	admin := &fakeAdmin{}
	h := NewExportCSVHandler(admin, messenger, zap.NewNop())

	if err := h(context.Background(), chat.Update{ChatID: 1}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if admin.days != service.DefaultExportDays {
		t.Fatalf("expected default days, got %d", admin.days)
	}
	if len(messenger.docs) != 1 || messenger.docs[0].Caption != "Exported 3 events" {
		t.Fatalf("unexpected documents %+v", messenger.docs)
	}

	for _, arg := range []string{"0", "-1", "week"} {
		admin.days = 0
		_ = h(context.Background(), chat.Update{ChatID: 1, Args: []string{arg}})
		if admin.days != 0 {
			t.Fatalf("arg %q must not export", arg)
		}
	}
	if messenger.texts[len(messenger.texts)-1] != exportUsage {
		t.Fatalf("expected usage text")
	}

	admin.exportErr = errors.New("db down")
	if err := h(context.Background(), chat.Update{ChatID: 1, Args: []string{"7"}}); err == nil {
		t.Fatalf("expected error to propagate")
	}
}
