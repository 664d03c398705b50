package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskgate/server/internal/shared/response"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// IdentityKey is the gin context key for the verified identity.
	IdentityKey = "session_identity"
)

// RequireSession returns a middleware that verifies the bearer session
// token and injects the identity into the gin context.
func RequireSession(manager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			response.Unauthorized(c, "session token required")
			c.Abort()
			return
		}

		identity, err := manager.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session token")
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin returns a middleware that restricts a route group to
// the configured admin subjects. It must run after RequireSession.
func RequireAdmin(adminSubjects []string) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(adminSubjects))
	for _, subject := range adminSubjects {
		admins[subject] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}
		if _, isAdmin := admins[identity.UserID]; !isAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the verified identity from the gin context.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	if val, exists := c.Get(IdentityKey); exists {
		if identity, ok := val.(Identity); ok {
			return identity, true
		}
	}
	return Identity{}, false
}

// MustIdentity returns the verified identity or aborts with 401. Use
// only on routes behind RequireSession.
func MustIdentity(c *gin.Context) (Identity, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return identity, ok
}

// extractBearerToken extracts the bearer token from the Authorization
// header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}
