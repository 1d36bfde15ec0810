package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// GetClientIP extracts real client IP from request
func GetClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if commaIdx := strings.Index(xff, ","); commaIdx != -1 {
			return strings.TrimSpace(xff[:commaIdx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}

	return c.ClientIP()
}

// GetRequestID returns the id assigned to the request, creating one if needed
func GetRequestID(c *gin.Context) string {
	if reqID, exists := c.Get(requestIDKey); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}

	reqID := c.GetHeader(RequestIDHeader)
	if reqID == "" || len(reqID) > 128 {
		reqID = uuid.NewString()
	}
	c.Set(requestIDKey, reqID)
	return reqID
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(RequestIDHeader, GetRequestID(c))
		c.Next()
	}
}
