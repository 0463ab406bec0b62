package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(RequestIDKey),
			))
			return
		}

		// Streaming bodies without a Content-Length are cut off by the reader
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
