package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// Every request is treated as anonymous.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDKey, "anonymous")
		c.Next()
	}
}

// Auth picks the middleware for the configured auth mode
func Auth(gatewayMode bool) gin.HandlerFunc {
	if gatewayMode {
		return GatewayAuth()
	}
	return NoAuth()
}
