package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count, latency and in-flight requests into the
// Prometheus collectors. Routes are labelled by pattern, so /orders/:id is
// one series no matter how many orders exist.
func HTTPMetrics(m *telemetry.PromMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		c.Next()

		route := routePattern(c)
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// routePattern returns the matched route pattern, or "unknown" for 404s
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
