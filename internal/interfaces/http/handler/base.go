package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// customerID returns the authenticated customer, or NOT_AUTHENTICATED
func customerID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.GetCustomerUUID(c)
	if !ok {
		return uuid.Nil, shared.ErrNotAuthenticated
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts errors to HTTP responses. Domain errors keep their
// code; anything else is reported as an internal error without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	if domainErr, ok := shared.AsDomainError(err); ok {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// bindJSON binds the body and answers with validation details on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and answers with validation details on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// listRequest binds and normalizes page, page_size and search
func (h *BaseHandler) listRequest(c *gin.Context) (dto.ListRequest, bool) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return req, false
	}
	req.Normalize()
	return req, true
}
