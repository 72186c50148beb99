package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/features/access"
)

const identityKey = "identity"

// Authenticator resolves a session token into the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Identity, error)
}

// Identify attaches the caller's identity when a bearer token is present.
// Requests without a token stay anonymous; an invalid token is rejected.
func Identify(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			_ = c.Error(errors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles admits authenticated callers holding one of roles.
func RequireRoles(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			_ = c.Error(errors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}
		if !identity.Role.In(roles...) {
			_ = c.Error(errors.NewForbiddenError("insufficient role").WithDetail("role", identity.Role))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin admits admins and the owner.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(access.RoleOwner, access.RoleAdmin)
}

// RequireContributor admits contributors, admins and the owner.
func RequireContributor() gin.HandlerFunc {
	return RequireRoles(access.RoleOwner, access.RoleAdmin, access.RoleContributor)
}

func CurrentIdentity(c *gin.Context) (access.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return access.Identity{}, false
	}
	identity, ok := v.(access.Identity)
	return identity, ok
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func getUserID(c *gin.Context) string {
	if identity, ok := CurrentIdentity(c); ok {
		return identity.UserID
	}
	return ""
}
