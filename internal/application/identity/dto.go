package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/identity"
)

// RegisterInput contains the sign-up form
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput contains the login credentials
type LoginInput struct {
	Email    string
	Password string
}

// RefreshTokenInput carries the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	CustomerID   uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string
}

// UpdateProfileInput changes the details used to pre-fill checkout
type UpdateProfileInput struct {
	Name    string
	Phone   string
	Address string
}

// ChangePasswordInput changes the account password
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// ProfileResponse is the account as shown to its owner
type ProfileResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	Role            string     `json:"role"`
	HasShippingInfo bool       `json:"has_shipping_info"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	AccessToken           string          `json:"access_token"`
	RefreshToken          string          `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time       `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time       `json:"refresh_token_expires_at"`
	TokenType             string          `json:"token_type"`
	Customer              ProfileResponse `json:"customer"`
}

// ToProfileResponse converts an account to its response
func ToProfileResponse(c *identity.Customer) ProfileResponse {
	return ProfileResponse{
		ID:              c.ID,
		Email:           c.Email,
		Name:            c.Name,
		Phone:           c.Phone,
		Address:         c.Address,
		Role:            string(c.Role),
		HasShippingInfo: c.HasCompleteShippingInfo(),
		LastLoginAt:     c.LastLoginAt,
		CreatedAt:       c.CreatedAt,
	}
}
