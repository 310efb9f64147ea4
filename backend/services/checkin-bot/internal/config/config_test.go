package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"fleetcheck/backend/services/checkin-bot/internal/password"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CHECKIN_POSTGRES_DSN", "postgres://localhost/checkin")
	t.Setenv("DRIVER_PINS", "V1:1111, V2:2222")
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("DISPATCH_CHAT_ID", "-100500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.Workers != 4 || cfg.PollTimeout() != time.Minute {
		t.Fatalf("unexpected bot defaults %+v", cfg.Bot)
	}
	if len(cfg.Access.AdminIDs) != 2 || cfg.Access.AdminIDs[1] != 20 {
		t.Fatalf("unexpected admins %v", cfg.Access.AdminIDs)
	}
	if len(cfg.Access.Pins) != 2 || cfg.Access.Pins[1] != (password.Pin{Alias: "V2", Secret: "2222"}) {
		t.Fatalf("unexpected pins %v", cfg.Access.Pins)
	}
	if cfg.Dispatch.ChatID != -100500 {
		t.Fatalf("unexpected dispatch %d", cfg.Dispatch.ChatID)
	}
	if cfg.HTTPAddress() != ":8090" || cfg.JWTExpiration() != 12*time.Hour {
		t.Fatalf("unexpected http defaults %+v", cfg.HTTP)
	}
	if cfg.Form.StrictPhotoDone {
		t.Fatalf("strict photo mode must default to off")
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Chisinau" {
		t.Fatalf("unexpected location %v %v", loc, err)
	}
}

func TestLoadRequiresTokenAndPins(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Fatalf("expected token error, got %v", err)
	}

	setRequired(t)
	t.Setenv("DRIVER_PINS", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DRIVER_PINS") {
		t.Fatalf("expected pins error, got %v", err)
	}
}

func TestDriverPinsKeepConfiguredOrder(t *testing.T) {
	setRequired(t)
	t.Setenv("DRIVER_PINS", "V9:1234, A1:1234, B2 : 5555")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := DriverPins{{Alias: "V9", Secret: "1234"}, {Alias: "A1", Secret: "1234"}, {Alias: "B2", Secret: "5555"}}
	if len(cfg.Access.Pins) != len(want) {
		t.Fatalf("unexpected pins %v", cfg.Access.Pins)
	}
	for i := range want {
		if cfg.Access.Pins[i] != want[i] {
			t.Fatalf("pin %d: expected %+v, got %+v", i, want[i], cfg.Access.Pins[i])
		}
	}

	t.Setenv("DRIVER_PINS", "V1-1111")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed pair")
	}
}

func TestDriverPinsFromYAMLMapping(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DRIVER_PINS")
	path := filepath.Join(t.TempDir(), "checkin.yaml")
	doc := "access:\n  driverPins:\n    Z1: \"1111\"\n    A2: \"1111\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Access.Pins) != 2 || cfg.Access.Pins[0].Alias != "Z1" || cfg.Access.Pins[1].Alias != "A2" {
		t.Fatalf("yaml order lost: %v", cfg.Access.Pins)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECKIN_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestRedisTTL(t *testing.T) {
	cfg := Defaults()
	if cfg.RedisTTL() != 7*24*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.RedisTTL())
	}
	cfg.Redis.TTLHours = 0
	if cfg.RedisTTL() != 0 {
		t.Fatalf("zero hours should disable expiry")
	}
}
