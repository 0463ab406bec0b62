package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/application/identity"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles sign up, login and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
// @ID           registerCustomer
// @Summary      Create an account
// @Description  Register a customer account and return a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Sign up form"
// @Success      201 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Login godoc
// @ID           loginCustomer
// @Summary      Login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair. The used refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @ID           logoutCustomer
// @Summary      Logout
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.HandleError(c, shared.ErrNotAuthenticated)
		return
	}
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// the body is optional
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	err = h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		CustomerID:   id,
		AccessJTI:    claims.ID,
		AccessTTL:    claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// GetProfile godoc
// @ID           getProfile
// @Summary      Get profile
// @Description  Return the signed-in customer's account and shipping details
// @Tags         profile
// @Produce      json
// @Success      200 {object} APIResponse[identity.ProfileResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}

// UpdateProfile godoc
// @ID           updateProfile
// @Summary      Update profile
// @Description  Change the name, phone and address used to pre-fill checkout
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identity.ProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), id, identity.UpdateProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Description  Change the password and revoke every session issued before
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), id, identity.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Password changed successfully"})
}
