package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByExternalID(ctx context.Context, externalID string) (user.User, error)
	UpdateRole(ctx context.Context, externalID string, role user.Role) (user.User, error)
}

// DirectoryCache sits in front of List. A miss falls through to the
// store; mutations invalidate.
type DirectoryCache interface {
	GetUsers(ctx context.Context) ([]user.User, bool)
	SetUsers(ctx context.Context, users []user.User)
	InvalidateUsers(ctx context.Context)
}

type UsersHandler struct {
	store UsersStore
	cache DirectoryCache
}

func NewUsersHandler(store UsersStore, cache DirectoryCache) *UsersHandler {
	return &UsersHandler{
		store: store,
		cache: cache,
	}
}

// GET /api/users
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	if _, ok := middlewares.UserIDFromContext(ctx); !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	if h.cache != nil {
		if users, ok := h.cache.GetUsers(rctx); ok {
			RespondJSONWithETag(ctx, http.StatusOK, gin.H{
				"items": users,
				"count": len(users),
			})
			return
		}
	}

	users, err := h.store.List(rctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	if h.cache != nil {
		h.cache.SetUsers(rctx, users)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

// GET /api/users/me
func (h *UsersHandler) GetMe(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	u, err := h.store.GetByExternalID(ctx.Request.Context(), externalID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not synced yet")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// GET /api/users/:externalId
func (h *UsersHandler) GetUserByExternalID(ctx *gin.Context) {
	if _, ok := middlewares.UserIDFromContext(ctx); !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	externalID := ctx.Param("externalId")

	u, err := h.store.GetByExternalID(ctx.Request.Context(), externalID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// PUT /api/users/me/role
// Callers flip their own role between the two allowed values; the
// binding tag rejects everything else before the store is touched.
func (h *UsersHandler) UpdateMyRole(ctx *gin.Context) {
	externalID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req user.UpdateRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.store.UpdateRole(ctx.Request.Context(), externalID, req.Role)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not synced yet")
			return
		}

		RespondInternal(ctx, "Could not update role")
		return
	}

	if h.cache != nil {
		h.cache.InvalidateUsers(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, u)
}
