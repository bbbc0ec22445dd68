package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier and stores the claims map on the request context.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// ClaimsRole extracts the role claim from the request context. Missing or
// malformed claims yield RoleUnknown (fail closed).
func ClaimsRole(c *gin.Context) models.Role {
	v, ok := c.Get("claims")
	if !ok {
		return models.RoleUnknown
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return models.RoleUnknown
	}
	s, _ := cm["role"].(string)
	r := models.Role(s)
	if !r.Valid() {
		return models.RoleUnknown
	}
	return r
}

// RequireRole aborts with 403 unless the authenticated claims carry a role at
// least as privileged as the target. Must run after AuthMiddleware.
func RequireRole(target models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ClaimsRole(c).AtLeast(target) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
