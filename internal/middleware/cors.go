package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS sets permissive headers when no domain is configured (local
// development) and restricts the origin to the configured domain otherwise.
func CORS(domain string) gin.HandlerFunc {
	origin := "*"
	if domain != "" {
		origin = domain
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
