package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/http/handlers"
	"github.com/geocoder89/intervue/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handler's collaborator interfaces

type fakeVerifier struct {
	err   error
	calls int
}

func (f *fakeVerifier) Verify(payload []byte, headers http.Header) error {
	f.calls++
	return f.err
}

type fakeSyncStore struct {
	upsertFn func(ctx context.Context, req user.SyncRequest) (user.User, error)
	deleteFn func(ctx context.Context, externalID string) error

	upserts []user.SyncRequest
	deletes []string
}

func (f *fakeSyncStore) Upsert(ctx context.Context, req user.SyncRequest) (user.User, error) {
	f.upserts = append(f.upserts, req)

	if f.upsertFn != nil {
		return f.upsertFn(ctx, req)
	}

	return user.NewFromSyncRequest(req), nil
}

func (f *fakeSyncStore) Delete(ctx context.Context, externalID string) error {
	f.deletes = append(f.deletes, externalID)

	if f.deleteFn != nil {
		return f.deleteFn(ctx, externalID)
	}

	return nil
}

// small helper which mounts the webhook handler on a fresh engine

func setupWebhookRouter(h *handlers.ClerkWebhookHandler) *gin.Engine {
	r := gin.New()

	r.POST("/clerk-webhook", h.HandleClerkWebhook)

	return r
}

func deliver(r *gin.Engine, body string, withHeaders bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/clerk-webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	if withHeaders {
		req.Header.Set("svix-id", "msg_1")
		req.Header.Set("svix-timestamp", "1700000000")
		req.Header.Set("svix-signature", "v1,abc")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

const userCreatedBody = `{
	"type": "user.created",
	"data": {
		"id": "u1",
		"email_addresses": [{"email_address": "a@b.com"}, {"email_address": "second@b.com"}],
		"first_name": "Jo",
		"last_name": "Doe",
		"image_url": "http://x/i.png"
	}
}`

func TestClerkWebhookMissingHeaders(t *testing.T) {
	verifier := &fakeVerifier{}
	store := &fakeSyncStore{}

	h := handlers.NewClerkWebhookHandler(store, verifier, nil, nil)
	r := setupWebhookRouter(h)

	w := deliver(r, userCreatedBody, false)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	if verifier.calls != 0 {
		t.Fatalf("verifier was called %d times before the header check", verifier.calls)
	}

	if len(store.upserts) != 0 || len(store.deletes) != 0 {
		t.Fatalf("store was mutated on a rejected delivery")
	}
}

func TestClerkWebhookBadSignature(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("signature mismatch")}
	store := &fakeSyncStore{}

	h := handlers.NewClerkWebhookHandler(store, verifier, nil, nil)
	r := setupWebhookRouter(h)

	w := deliver(r, userCreatedBody, true)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	if len(store.upserts) != 0 || len(store.deletes) != 0 {
		t.Fatalf("store was mutated despite a bad signature")
	}
}

func TestClerkWebhookUserCreated(t *testing.T) {
	verifier := &fakeVerifier{}
	store := &fakeSyncStore{}

	h := handlers.NewClerkWebhookHandler(store, verifier, nil, nil)
	r := setupWebhookRouter(h)

	w := deliver(r, userCreatedBody, true)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	if len(store.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(store.upserts))
	}

	got := store.upserts[0]

	if got.ExternalID != "u1" {
		t.Errorf("externalId = %q, want %q", got.ExternalID, "u1")
	}
	if got.Email != "a@b.com" {
		t.Errorf("email = %q, want first address %q", got.Email, "a@b.com")
	}
	if got.Name != "JoDoe" {
		t.Errorf("name = %q, want %q", got.Name, "JoDoe")
	}
	if got.Image != "http://x/i.png" {
		t.Errorf("image = %q, want %q", got.Image, "http://x/i.png")
	}
}

func TestClerkWebhookEventRouting(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetUp     func(*fakeSyncStore)
		wantStatusCode int
		wantUpserts    int
		wantDeletes    int
	}{
		{
			name:           "unknown_event_ignored",
			body:           `{"type": "session.created", "data": {"id": "sess_1"}}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "user_updated_syncs",
			body:           `{"type": "user.updated", "data": {"id": "u1", "email_addresses": [{"email_address": "a@b.com"}], "first_name": "Jo", "last_name": "Doe"}}`,
			wantStatusCode: http.StatusOK,
			wantUpserts:    1,
		},
		{
			name:           "user_deleted_removes_record",
			body:           `{"type": "user.deleted", "data": {"id": "u1"}}`,
			wantStatusCode: http.StatusOK,
			wantDeletes:    1,
		},
		{
			name:           "missing_user_id_rejected",
			body:           `{"type": "user.created", "data": {"email_addresses": []}}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_failure_is_server_error",
			body: userCreatedBody,
			storeSetUp: func(f *fakeSyncStore) {
				f.upsertFn = func(ctx context.Context, req user.SyncRequest) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantUpserts:    1,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			store := &fakeSyncStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			h := handlers.NewClerkWebhookHandler(store, verifier, nil, nil)
			r := setupWebhookRouter(h)

			w := deliver(r, tt.body, true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(store.upserts) != tt.wantUpserts {
				t.Errorf("got %d upserts, want %d", len(store.upserts), tt.wantUpserts)
			}

			if len(store.deletes) != tt.wantDeletes {
				t.Errorf("got %d deletes, want %d", len(store.deletes), tt.wantDeletes)
			}
		})
	}
}

// Redelivering the same event must never create a second record. Uses
// the real in-memory repo rather than a fake to exercise the upsert.
func TestClerkWebhookIdempotentRedelivery(t *testing.T) {
	verifier := &fakeVerifier{}
	store := memory.NewUsersRepo()

	h := handlers.NewClerkWebhookHandler(store, verifier, nil, nil)
	r := setupWebhookRouter(h)

	for i := 0; i < 3; i++ {
		w := deliver(r, userCreatedBody, true)

		if w.Code != http.StatusOK {
			t.Fatalf("delivery %d: got status %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	users, err := store.List(context.Background())

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(users) != 1 {
		t.Fatalf("got %d user records after redelivery, want exactly 1", len(users))
	}

	if users[0].ExternalID != "u1" {
		t.Errorf("externalId = %q, want %q", users[0].ExternalID, "u1")
	}

	if users[0].Role != user.DefaultRole {
		t.Errorf("role = %q, want default %q", users[0].Role, user.DefaultRole)
	}
}
