package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSOptions configures the CORS middleware
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS answers preflight requests and decorates responses for allowed origins
func CORS(opts CORSOptions) gin.HandlerFunc {
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(opts.MaxAge)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowed, ok := allowedOrigin(opts.AllowedOrigins, origin)
		if origin == "" || !ok {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", maxAge)
		if allowed != "*" {
			c.Header("Vary", "Origin")
		}
		if opts.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func allowedOrigin(origins []string, origin string) (string, bool) {
	for _, candidate := range origins {
		if candidate == "*" {
			return "*", true
		}
		if candidate == origin {
			return origin, true
		}
	}
	return "", false
}

// SecurityHeaders sets the response headers every page of the locker gets
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}
