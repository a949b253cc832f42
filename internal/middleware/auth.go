package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"verdant/internal/auth"
	"verdant/internal/authz"
	"verdant/internal/logging"
)

const identityKey = "identity"

// AuthGuard resolves the caller from the x-auth-token header or an
// Authorization bearer token and stores it on the context.
func AuthGuard(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c.Request)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			return
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func tokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get("x-auth-token")); t != "" {
		return t
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.Fields(raw)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Identity returns the caller set by AuthGuard.
func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// RequirePermission must run after AuthGuard.
func RequirePermission(enforcer *authz.Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			return
		}

		allowed, err := enforcer.Allowed(id.Role, resource, action)
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Str("resource", resource).Msg("authorization check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
