package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Common errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingCustomerID  = errors.New("missing customer_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	CustomerID   string    `json:"customer_id"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	CustomerID uuid.UUID
	Email      string
	Role       string
}

// GenerateTokenPair generates both access and refresh tokens
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(input, 0)
}

func (s *JWTService) issuePair(input GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	now := time.Now()

	accessClaims := &Claims{
		RegisteredClaims: s.registered(input.CustomerID, now, s.accessExpiration),
		CustomerID:       input.CustomerID.String(),
		Email:            input.Email,
		Role:             input.Role,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.generateToken(accessClaims, s.accessSecret)
	if err != nil {
		return nil, err
	}

	// refresh tokens carry only the subject
	refreshClaims := &Claims{
		RegisteredClaims: s.registered(input.CustomerID, now, s.refreshExpiration),
		CustomerID:       input.CustomerID.String(),
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := s.generateToken(refreshClaims, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(subject uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// generateToken creates a signed JWT token
func (s *JWTService) generateToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validateToken(tokenString string, secret []byte, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if claims.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	return claims, nil
}

// RefreshTokenPair exchanges a valid refresh token for a new pair. Email and
// role are passed in so the new access token reflects the current account.
func (s *JWTService) RefreshTokenPair(refreshToken, email, role string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}

	customerID, err := uuid.Parse(claims.CustomerID)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return s.issuePair(GenerateTokenInput{
		CustomerID: customerID,
		Email:      email,
		Role:       role,
	}, claims.RefreshCount+1)
}

// GetCustomerUUID extracts and parses the customer ID from claims
func (c *Claims) GetCustomerUUID() (uuid.UUID, error) {
	return uuid.Parse(c.CustomerID)
}

// IsStaff reports whether the token belongs to a staff account
func (c *Claims) IsStaff() bool {
	return c.Role == "staff"
}

// GetIssuedAtTime returns the token's issued-at time as time.Time
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetAccessTokenExpiration returns the access token expiration duration
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// GetRefreshTokenExpiration returns the refresh token expiration duration
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
