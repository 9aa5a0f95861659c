package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/intervue/internal/http/handlers"
	"github.com/geocoder89/intervue/internal/video"
)

func TestGetCallToken(t *testing.T) {
	tokens := video.NewTokenManager("key_123", "super-secret", time.Hour)

	h := handlers.NewCallsHandler(tokens)
	r := setupAuthedRouter("u1", http.MethodGet, "/api/calls/token", h.GetCallToken)

	w := doJSON(r, http.MethodGet, "/api/calls/token", "", true)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		APIKey string `json:"apiKey"`
		Token  string `json:"token"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.APIKey != "key_123" {
		t.Errorf("apiKey = %q, want %q", resp.APIKey, "key_123")
	}

	claims, err := tokens.ParseAndValidate(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}

	if claims.UserID != "u1" {
		t.Errorf("user_id claim = %q, want caller identity %q", claims.UserID, "u1")
	}
}

func TestGetCallTokenUnconfigured(t *testing.T) {
	tokens := video.NewTokenManager("", "", time.Hour)

	h := handlers.NewCallsHandler(tokens)
	r := setupAuthedRouter("u1", http.MethodGet, "/api/calls/token", h.GetCallToken)

	w := doJSON(r, http.MethodGet, "/api/calls/token", "", true)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusServiceUnavailable, w.Body.String())
	}
}
