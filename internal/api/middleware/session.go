package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recallweb/recall/internal/auth"
	"github.com/recallweb/recall/internal/logging"
)

// identityKey is the gin context key holding the verified session claims.
const identityKey = "__session_claims__"

// SessionAuth verifies the session cookie and stores the caller's identity
// in the request context. Requests without a valid session get 401; a
// missing session secret is a server configuration problem and gets 500.
func SessionAuth(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth is not configured"})
			return
		}

		token, err := c.Cookie(auth.CookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Set(identityKey, claims)
		c.Set(logging.IdentityLogKey, claims.Email)
		c.Next()
	}
}

// Identity returns the verified email for the current request, or "" when
// the request carries no session (handlers treat that as a missing user).
func Identity(c *gin.Context) string {
	claims := Claims(c)
	if claims == nil {
		return ""
	}
	return claims.Email
}

// Claims returns the full session claims, or nil.
func Claims(c *gin.Context) *auth.SessionClaims {
	val, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	claims, ok := val.(*auth.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
