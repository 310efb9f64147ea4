package service

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	raw, err := tokens.GenerateToken(77, RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tokens.ValidateToken(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 77 || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenService("secret", time.Minute)
	raw, err := issuer.GenerateToken(77, RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenService("other", time.Minute).ValidateToken(raw); err == nil {
		t.Fatalf("expected signature error")
	}

	later := NewTokenService("secret", time.Minute)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := later.ValidateToken(raw); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestAdminSet(t *testing.T) {
	set := NewAdminSet([]int64{1, 2})
	if !set.Contains(1) || set.Contains(3) {
		t.Fatalf("unexpected membership")
	}
}
