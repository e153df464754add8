package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceSecretHeader carries the shared secret presented by bin firmware.
const DeviceSecretHeader = "X-Device-Secret"

// DeviceAuthMiddleware authenticates bin hardware by shared secret.
// Bins have no user account; scan ingestion and token-addressed credits
// ride on this instead of a bearer token.
func DeviceAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			// Misconfigured deployment: fail closed
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Device ingestion is not configured",
			})
			return
		}

		presented := c.GetHeader(DeviceSecretHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid device secret",
			})
			return
		}

		c.Next()
	}
}
