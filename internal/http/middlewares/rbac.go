package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RoleReader resolves the mirrored user record for a verified identity.
// Roles live in our store, not in the session token, so a role change
// takes effect on the next request without reissuing sessions.
type RoleReader interface {
	GetByExternalID(ctx context.Context, externalID string) (user.User, error)
}

func (m *AuthMiddleware) RequireRole(roles RoleReader, required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, ok := UserIDFromContext(c)

		if !ok || externalID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		u, err := roles.GetByExternalID(c.Request.Context(), externalID)

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": gin.H{
						"code":    "forbidden",
						"message": "Account has not been synced yet",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve caller role",
				},
			})
			return
		}

		if u.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Interviewer role required",
				},
			})
			return
		}

		c.Set(ctxRoleKey, string(u.Role))

		c.Next()
	}
}
