package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimitOptions configures a per-client rate limiter
type RateLimitOptions struct {
	// PerMinute is the sustained number of requests allowed per client
	PerMinute int
	// Burst is how many requests a client may make back to back
	Burst int
	// MaxIdle is how long an unused client bucket is kept
	MaxIdle time.Duration
}

// KeyGenerator derives the rate limit key of a request
type KeyGenerator func(*gin.Context) string

// ClientIPKeyGenerator keys requests by client IP
func ClientIPKeyGenerator(c *gin.Context) string {
	return "ip:" + GetClientIP(c)
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	maxIdle   time.Duration
	buckets   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter from opts
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	maxIdle := opts.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 10 * time.Minute
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(opts.PerMinute) / 60.0),
		burst:   burst,
		maxIdle: maxIdle,
		buckets: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// Allow takes a token for key. When none is available it returns false and
// the time until one will be.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = bucket
	}
	bucket.lastSeen = now

	reservation := bucket.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, rl.maxIdle
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		// hand the token back so waiting clients are not pushed further out
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops buckets idle for longer than maxIdle; runs at most once per maxIdle
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.maxIdle {
		return
	}
	rl.lastSweep = now

	for key, bucket := range rl.buckets {
		if now.Sub(bucket.lastSeen) > rl.maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (rl *RateLimiter) Middleware(keyFn KeyGenerator) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ClientIPKeyGenerator
	}

	return func(c *gin.Context) {
		key := keyFn(c)
		allowed, retryAfter := rl.Allow(key)
		if allowed {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		log.Warn().
			Str("key", key).
			Str("path", c.Request.URL.Path).
			Str("request_id", GetRequestID(c)).
			Int("retry_after", seconds).
			Msg("rate limit exceeded")

		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"error":       "too many requests, try again later",
			"code":        "RATE_LIMIT_EXCEEDED",
			"retry_after": seconds,
		})
	}
}
