package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nanna-memorial/backend/pkg/response"
)

// ContextPrincipal is the gin context key for the authenticated admin
// principal. Static-key requests carry an empty principal.
const ContextPrincipal = "admin_principal"

// TokenVerifier verifies a session token, returning the principal and
// whether the token is valid.
type TokenVerifier interface {
	Verify(token string) (principal string, ok bool)
}

// AdminAuth returns a middleware authorizing admin routes. A request is
// authorized by a valid Bearer session token, or by the legacy x-admin-key
// header matching staticKey. Both paths grant the same full capability.
// Unauthorized requests fail closed with 401.
func AdminAuth(tokens TokenVerifier, staticKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if principal, ok := tokens.Verify(parts[1]); ok {
					c.Set(ContextPrincipal, principal)
					c.Next()
					return
				}
			}
		}

		if staticKey != "" {
			key := c.GetHeader("x-admin-key")
			if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(staticKey)) == 1 {
				c.Set(ContextPrincipal, "")
				c.Next()
				return
			}
		}

		response.Unauthorized(c)
		c.Abort()
	}
}
