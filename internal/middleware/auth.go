package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/identity"
	"github.com/pawnest/service-marketplace/internal/response"
)

const (
	contextUserIDKey = "auth.user_id"
	contextRoleKey   = "auth.role"
)

// IdentityResolver loads the account behind a verified token so the middleware
// can reject tokens for deactivated accounts.
type IdentityResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// Auth authenticates the bearer token and attaches the resolved identity to
// the request context. Tokens resolving to a deactivated account are rejected.
func Auth(jwtManager *auth.JWTManager, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolveClaims(c, jwtManager)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// A missing account means a stale token; anything else is a
			// store failure and must not masquerade as a credential problem.
			if domain.IsKind(err, domain.KindNotFound) {
				response.Unauthorized(c, "account is not active")
			} else {
				response.InternalError(c, err)
			}
			return
		}
		if !user.IsActive() {
			response.Unauthorized(c, "account is not active")
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid credential is present and
// proceeds anonymously otherwise. Used by public reads that personalize output.
func OptionalAuth(jwtManager *auth.JWTManager, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolveClaims(c, jwtManager)
		if ok {
			if user, err := users.FindByID(c.Request.Context(), claims.UserID); err == nil && user.IsActive() {
				c.Set(contextUserIDKey, claims.UserID)
				c.Set(contextRoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role differs from the
// required one. The message names both roles to help clients explain what
// went wrong.
func RequireRole(required auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		if role != required {
			response.Forbidden(c, fmt.Sprintf(
				"this action is only available to %s accounts; you are signed in as a %s", required, role))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(contextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the authenticated user's role from the request context.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, exists := c.Get(contextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}

func resolveClaims(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := jwtManager.Verify(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
