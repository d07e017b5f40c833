package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS returns a middleware permitting any origin. The content is public and
// low-sensitivity; the admin dashboard is served from a separate origin, so
// the admin headers must be allowed here too.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type,x-admin-key,Authorization,Origin,Accept,X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "OPTIONS,GET,POST,PATCH,DELETE,PUT")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
