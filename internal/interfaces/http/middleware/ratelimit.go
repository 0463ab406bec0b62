package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client key. A bucket holds
// limit tokens and refills at limit per window.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    int
	every    rate.Limit
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		limit:    limit,
		every:    rate.Limit(float64(limit) / window.Seconds()),
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).AllowN(rl.now(), 1)
}

// Remaining returns the whole tokens left for the given key
func (rl *RateLimiter) Remaining(key string) int {
	tokens := int(rl.get(key).TokensAt(rl.now()))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// Cleanup forgets clients idle for more than two windows and reports how many were dropped
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	dropped := 0
	for key, v := range rl.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			dropped++
		}
	}
	return dropped
}

// Size returns the number of tracked clients
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(RequestIDKey),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
