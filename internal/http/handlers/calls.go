package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/geocoder89/intervue/internal/video"
	"github.com/gin-gonic/gin"
)

type CallTokenIssuer interface {
	APIKey() string
	GenerateCallToken(externalID string) (token string, expiresAt time.Time, err error)
}

type CallsHandler struct {
	tokens CallTokenIssuer
}

func NewCallsHandler(tokens CallTokenIssuer) *CallsHandler {
	return &CallsHandler{tokens: tokens}
}

// GET /api/calls/token
// Issues a short-lived token the browser hands to the video SDK. The
// provider trusts it because it is signed with the shared API secret.
func (h *CallsHandler) GetCallToken(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	token, expiresAt, err := h.tokens.GenerateCallToken(externalID)

	if err != nil {
		if errors.Is(err, video.ErrNotConfigured) {
			RespondError(ctx, http.StatusServiceUnavailable, "calls_unavailable", "Video calls are not configured", nil)
			return
		}

		RespondInternal(ctx, "Could not issue call token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"apiKey":    h.tokens.APIKey(),
		"token":     token,
		"expiresAt": expiresAt.UTC(),
	})
}
