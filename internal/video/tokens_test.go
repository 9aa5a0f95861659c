package video

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParseCallToken(t *testing.T) {
	m := NewTokenManager("key_123", "super-secret", time.Hour)

	token, expiresAt, err := m.GenerateCallToken("u1")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if until := time.Until(expiresAt); until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry %v away, want about an hour", until)
	}

	claims, err := m.ParseAndValidate(token)

	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if claims.UserID != "u1" {
		t.Errorf("user_id = %q, want %q", claims.UserID, "u1")
	}

	if claims.Subject != "u1" {
		t.Errorf("sub = %q, want %q", claims.Subject, "u1")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("key_123", "secret-a", time.Hour)
	other := NewTokenManager("key_123", "secret-b", time.Hour)

	token, _, err := issuer.GenerateCallToken("u1")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestGenerateWithoutCredentials(t *testing.T) {
	m := NewTokenManager("", "", time.Hour)

	_, _, err := m.GenerateCallToken("u1")

	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
