package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitboard/internal/constants"
)

// RequestID assigns a UUID to each request, honoring an incoming
// X-Request-ID header so upstream proxies can correlate logs. The ID is
// echoed back in the response and stored in the context for audit entries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID retrieves the request ID from context, empty when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	id, exists := c.Get(constants.ContextKeyRequestID)
	if !exists {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}
