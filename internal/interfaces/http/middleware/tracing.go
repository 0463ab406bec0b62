// Package middleware provides the gin middleware of the storefront API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// Options are passed through to otelgin, mostly for tests.
	Options []otelgin.Option
}

// Tracing wraps otelgin, which names the span after the route pattern and
// picks up the W3C trace context of the caller
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName, cfg.Options...)
}

// SpanEnricher annotates the current span with the request and customer IDs
// and marks it failed for 5xx answers. It must run inside Tracing and after
// the JWT middleware for the customer ID to be known.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if customerID := GetJWTCustomerID(c); customerID != "" {
			span.SetAttributes(attribute.String("customer_id", customerID))
		}

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if code := c.GetString(ErrorCodeKey); code != "" {
			span.SetAttributes(attribute.String("error.code", code))
		}
	}
}

// ErrorCodeKey is where handlers leave the error code they answered with
const ErrorCodeKey = "error_code"
