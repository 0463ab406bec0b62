package handler

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for sign up
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=200"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// =====================
// Profile Request DTOs
// =====================

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone" binding:"omitempty,max=30,phone_id"`
	Address string `json:"address" binding:"omitempty,max=500"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
