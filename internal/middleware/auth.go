package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backoffice-api/internal/auth"
)

const userIDKey = "userID"

// Auth validates the Bearer access token and stores the principal's user id
// in the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated principal's id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
