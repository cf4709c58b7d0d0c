package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey holds the caller's id on the gin context for logs and Sentry
const userIDKey = "user_id_str"

// GatewayAuth trusts the X-User-ID header set by the gateway in front of the API.
// Only use it when the API is reachable solely through that gateway.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalGatewayAuth records the gateway user when present and lets anonymous requests through
func OptionalGatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

// GetUserIDFromGateway returns the caller id set by the auth middleware
func GetUserIDFromGateway(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	return userID, userID != ""
}
