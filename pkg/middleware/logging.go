package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logging writes one structured line per request. Paths with any of the
// skip prefixes are served but not logged.
func Logging(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		path := c.Request.URL.Path
		for _, skip := range skipPaths {
			if skip != "" && strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("duration", duration).
			Int("size", c.Writer.Size()).
			Str("client_ip", GetClientIP(c)).
			Str("user_agent", c.Request.UserAgent()).
			Msg("request")
	}
}
