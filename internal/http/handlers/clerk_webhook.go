package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/observability"
	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
)

// SignatureVerifier is the trust boundary: nothing downstream runs
// until Verify accepts the raw body against the svix headers.
// Small interface so tests can fake it.
type SignatureVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type SvixVerifier struct {
	wh *svix.Webhook
}

// NewSvixVerifier builds the verifier once at wiring time; the signing
// secret is validated here, not per request.
func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	wh, err := svix.NewWebhook(secret)

	if err != nil {
		return nil, err
	}

	return &SvixVerifier{wh: wh}, nil
}

func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	return v.wh.Verify(payload, headers)
}

type UserSyncStore interface {
	Upsert(ctx context.Context, req user.SyncRequest) (user.User, error)
	Delete(ctx context.Context, externalID string) error
}

type ClerkWebhookHandler struct {
	users    UserSyncStore
	verifier SignatureVerifier
	prom     *observability.Prom
	onChange func(ctx context.Context)
}

// onChange fires after any successful mutation (cache invalidation);
// pass nil when there is nothing to notify.
func NewClerkWebhookHandler(users UserSyncStore, verifier SignatureVerifier, prom *observability.Prom, onChange func(ctx context.Context)) *ClerkWebhookHandler {
	return &ClerkWebhookHandler{
		users:    users,
		verifier: verifier,
		prom:     prom,
		onChange: onChange,
	}
}

// event envelope: a tagged union on "type", data decoded per variant
type webhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkUserData struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// HandleClerkWebhook processes signed identity lifecycle deliveries.
// POST /clerk-webhook
func (h *ClerkWebhookHandler) HandleClerkWebhook(ctx *gin.Context) {
	// All three svix headers must be present. A missing header is a
	// terminal client error, never retried into the store.
	svixID := ctx.GetHeader("svix-id")
	svixTimestamp := ctx.GetHeader("svix-timestamp")
	svixSignature := ctx.GetHeader("svix-signature")

	if svixID == "" || svixTimestamp == "" || svixSignature == "" {
		h.prom.ObserveWebhook("unknown", "rejected")
		RespondBadRequest(ctx, "Missing svix headers", nil)
		return
	}

	body, err := io.ReadAll(ctx.Request.Body)

	if err != nil {
		h.prom.ObserveWebhook("unknown", "rejected")
		RespondBadRequest(ctx, "Could not read request body", nil)
		return
	}

	// Signature check happens on the raw bytes, before the payload is
	// even parsed. A tampered or expired delivery stops here.
	headers := http.Header{}
	headers.Set("svix-id", svixID)
	headers.Set("svix-timestamp", svixTimestamp)
	headers.Set("svix-signature", svixSignature)

	if err := h.verifier.Verify(body, headers); err != nil {
		slog.Default().WarnContext(ctx.Request.Context(), "webhook signature rejected", "err", err)
		h.prom.ObserveWebhook("unknown", "rejected")
		RespondError(ctx, http.StatusBadRequest, "invalid_signature", "Webhook signature verification failed", nil)
		return
	}

	var evt webhookEnvelope

	if err := json.Unmarshal(body, &evt); err != nil {
		h.prom.ObserveWebhook("unknown", "rejected")
		RespondBadRequest(ctx, "Invalid event payload", nil)
		return
	}

	switch evt.Type {
	case "user.created", "user.updated":
		if !h.syncUser(ctx, evt) {
			return
		}

	case "user.deleted":
		if !h.deleteUser(ctx, evt) {
			return
		}

	default:
		// unknown variants are accepted and ignored
		slog.Default().DebugContext(ctx.Request.Context(), "ignoring webhook event", "type", evt.Type)
		h.prom.ObserveWebhook(evt.Type, "ignored")
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *ClerkWebhookHandler) syncUser(ctx *gin.Context, evt webhookEnvelope) bool {
	var data clerkUserData

	if err := json.Unmarshal(evt.Data, &data); err != nil || data.ID == "" {
		h.prom.ObserveWebhook(evt.Type, "rejected")
		RespondBadRequest(ctx, "Invalid user payload", nil)
		return false
	}

	// first email address wins
	email := ""
	if len(data.EmailAddresses) > 0 {
		email = data.EmailAddresses[0].EmailAddress
	}

	req := user.SyncRequest{
		ExternalID: data.ID,
		Email:      email,
		Name:       user.DisplayName(data.FirstName, data.LastName),
		Image:      data.ImageURL,
	}

	u, err := h.users.Upsert(ctx.Request.Context(), req)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "user sync failed", "external_id", data.ID, "err", err)
		h.prom.ObserveWebhook(evt.Type, "failed")
		RespondInternal(ctx, "Could not sync user")
		return false
	}

	h.notifyChange(ctx.Request.Context())
	h.prom.ObserveWebhook(evt.Type, "processed")
	slog.Default().InfoContext(ctx.Request.Context(), "user synced", "external_id", u.ExternalID, "role", u.Role)

	return true
}

func (h *ClerkWebhookHandler) deleteUser(ctx *gin.Context, evt webhookEnvelope) bool {
	var data struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(evt.Data, &data); err != nil || data.ID == "" {
		h.prom.ObserveWebhook(evt.Type, "rejected")
		RespondBadRequest(ctx, "Invalid user payload", nil)
		return false
	}

	if err := h.users.Delete(ctx.Request.Context(), data.ID); err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "user delete failed", "external_id", data.ID, "err", err)
		h.prom.ObserveWebhook(evt.Type, "failed")
		RespondInternal(ctx, "Could not delete user")
		return false
	}

	h.notifyChange(ctx.Request.Context())
	h.prom.ObserveWebhook(evt.Type, "processed")

	return true
}

func (h *ClerkWebhookHandler) notifyChange(ctx context.Context) {
	if h.onChange != nil {
		h.onChange(ctx)
	}
}
