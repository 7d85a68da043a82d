package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards mutating routes. An empty key disables the check.
func AdminKey(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required == "" {
			c.Next()
			return
		}
		key := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(required)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid admin key",
				},
			})
			return
		}
		c.Next()
	}
}
