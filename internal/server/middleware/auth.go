package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tribehive/ai-orchestrator/pkg/api"
)

// Auth checks for a valid Bearer token in the Authorization header against
// the configured static keys. An empty key list disables authentication.
func Auth(staticKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(staticKeys) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{
				Kind:    "authentication",
				Message: "Missing Authorization header",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{
				Kind:    "authentication",
				Message: "Invalid Authorization header format",
			})
			return
		}

		token := parts[1]
		for _, key := range staticKeys {
			if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{
			Kind:    "authentication",
			Message: "Invalid API key",
		})
	}
}
