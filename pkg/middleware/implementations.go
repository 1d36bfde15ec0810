package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns panics into a JSON 500 and logs the recovered value
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "internal server error",
			"request_id": GetRequestID(c),
		})
	})
}

// BodyLimit caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are refused up front; others fail on read with
// *http.MaxBytesError, which handlers map to 413.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "request body too large",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
