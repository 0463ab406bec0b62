package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to the limit", func(t *testing.T) {
		limiter, _ := newClockedLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
		assert.Equal(t, 0, limiter.Remaining("client"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter, _ := newClockedLimiter(1, time.Minute)

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter, clock := newClockedLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("client"))
		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))

		clock.advance(30 * time.Second)
		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))

		clock.advance(time.Minute)
		assert.Equal(t, 2, limiter.Remaining("client"))
	})

	t.Run("cleanup drops idle clients", func(t *testing.T) {
		limiter, clock := newClockedLimiter(5, time.Minute)
		limiter.Allow("idle")
		clock.advance(90 * time.Second)
		limiter.Allow("active")

		clock.advance(45 * time.Second)
		assert.Equal(t, 1, limiter.Cleanup())
		assert.Equal(t, 1, limiter.Size())
	})

	t.Run("non positive settings fall back", func(t *testing.T) {
		limiter := NewRateLimiter(0, 0)
		assert.Equal(t, 1, limiter.limit)
		assert.Equal(t, time.Minute, limiter.window)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newClockedLimiter(2, time.Minute)

	router := gin.New()
	router.Use(RequestID(), RateLimit(limiter))
	router.GET("/products", okHandler)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := do("10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	blocked := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, errorCode(t, blocked))

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestRateLimitByKey(t *testing.T) {
	limiter, _ := newClockedLimiter(1, time.Minute)

	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Customer")
	}))
	router.GET("/test", okHandler)

	do := func(customer string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Customer", customer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, do("alice"))
	assert.Equal(t, http.StatusTooManyRequests, do("alice"))
	assert.Equal(t, http.StatusOK, do("bob"))
}
