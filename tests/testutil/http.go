package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
)

// GinContext is a handler context backed by a response recorder
type GinContext struct {
	*gin.Context
	Recorder *httptest.ResponseRecorder
}

// NewGinContext builds a context for a JSON request
func NewGinContext(method, path string, body []byte) *GinContext {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return &GinContext{Context: c, Recorder: w}
}

// AsCustomer authenticates the context the way the JWT middleware does
func (c *GinContext) AsCustomer(id uuid.UUID) *GinContext {
	c.Set(middleware.JWTCustomerIDKey, id.String())
	return c
}

// WithRequestID tags the context the way the request ID middleware does
func (c *GinContext) WithRequestID(id string) *GinContext {
	c.Set(middleware.RequestIDKey, id)
	return c
}

// AssertSuccessBody checks body is a success envelope and decodes its data
// into out when out is not nil
func AssertSuccessBody(t *testing.T, body []byte, out any) {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	assert.True(t, resp.Success, string(body))
	assert.Nil(t, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
}

// AssertErrorBody checks body is a failed envelope with the error code and
// returns the error for further checks
func AssertErrorBody(t *testing.T, body []byte, code string) *dto.ErrorInfo {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	assert.False(t, resp.Success, string(body))
	require.NotNil(t, resp.Error, string(body))
	assert.Equal(t, code, resp.Error.Code)
	return resp.Error
}
