package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
)

func swaggerRouter(cfg config.SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), okHandler)
	return router
}

func requestFrom(router *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = ip + ":5555"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, requestFrom(swaggerRouter(config.SwaggerConfig{}, nil), "127.0.0.1"))
	})

	t.Run("open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, requestFrom(swaggerRouter(config.SwaggerConfig{Enabled: true}, nil), "8.8.8.8"))
	})

	t.Run("allow list", func(t *testing.T) {
		router := swaggerRouter(config.SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "not-an-ip"},
		}, nil)

		assert.Equal(t, http.StatusOK, requestFrom(router, "127.0.0.1"))
		assert.Equal(t, http.StatusOK, requestFrom(router, "10.20.30.40"))
		assert.Equal(t, http.StatusForbidden, requestFrom(router, "192.168.1.1"))
	})

	t.Run("requires auth", func(t *testing.T) {
		router := swaggerRouter(config.SwaggerConfig{Enabled: true, RequireAuth: true},
			JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: newTestJWTService()}))
		assert.Equal(t, http.StatusUnauthorized, requestFrom(router, "127.0.0.1"))
	})
}
