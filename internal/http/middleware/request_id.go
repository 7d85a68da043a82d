package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID propagates a caller-supplied request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = "req_" + uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}
