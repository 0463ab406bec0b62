package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
)

// Request ID context key and header
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns default CORS configuration. AllowOrigins is empty,
// so cross-origin requests get no CORS headers until origins are configured.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", RequestIDHeader, "Idempotency-Key", "Accept", "Origin"},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORSConfigFrom builds the CORS configuration from the HTTP settings
func CORSConfigFrom(cfg config.HTTPConfig) CORSConfig {
	cors := DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

// CORS returns a middleware that handles CORS with default configuration
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests always answer 204; headers are only added for allowed origins.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")

	allowedOrigin := func(origin string) string {
		switch {
		case wildcard:
			return "*"
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			return origin
		default:
			return ""
		}
	}

	return func(c *gin.Context) {
		if allowed := allowedOrigin(c.GetHeader("Origin")); allowed != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if cfg.AllowCredentials && allowed != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
			h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
			if len(cfg.ExposeHeaders) > 0 {
				h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID propagates the caller's X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// Secure adds the usual browser hardening headers
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}
