package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
)

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(16))
	router.POST("/upload", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("tiny")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length over the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, errorCode(t, w))
	})

	t.Run("streamed body is cut off", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
