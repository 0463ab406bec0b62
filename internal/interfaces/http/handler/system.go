package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// PingContext calls f
func (f PingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]Pinger
}

// NewSystemHandler creates a new SystemHandler. Each named check is pinged by
// the health endpoint.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"storefront"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse reports the state of each dependency
// @name HandlerHealthResponse
type HealthResponse struct {
	Status string            `json:"status" example:"healthy"`
	Time   string            `json:"time" example:"2026-01-23T12:00:00Z"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the database and the other configured dependencies
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Time:   time.Now().Format(time.RFC3339),
		Checks: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
