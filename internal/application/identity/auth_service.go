package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Token errors surfaced to clients
var (
	ErrTokenExpired    = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid    = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked    = shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	ErrTokenMaxRefresh = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles registration, authentication and the account profile
type AuthService struct {
	customerRepo identity.CustomerRepository
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new authentication service. A nil blacklist
// makes logout client-side only.
func NewAuthService(
	customerRepo identity.CustomerRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		customerRepo: customerRepo,
		jwtService:   jwtService,
		blacklist:    blacklist,
		logger:       logger.Named("auth"),
		now:          time.Now,
	}
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	c, err := identity.NewCustomer(input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.customerRepo.ExistsByEmail(ctx, c.Email)
	if err != nil {
		return nil, wrapErr(err)
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	c.RecordLogin(s.now())
	if err := s.customerRepo.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save new customer", zap.Error(err))
		return nil, wrapErr(err)
	}
	s.logger.Info("Customer registered", zap.String("customer_id", c.ID.String()))
	return s.issue(c)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	c, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("email", email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, wrapErr(err)
	}
	if !c.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("customer_id", c.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	c.RecordLogin(s.now())
	if err := s.customerRepo.Save(ctx, c); err != nil {
		// Don't fail the login
		s.logger.Error("Failed to record login", zap.String("customer_id", c.ID.String()), zap.Error(err))
	}
	s.logger.Info("Customer logged in", zap.String("customer_id", c.ID.String()))
	return s.issue(c)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, input RefreshTokenInput) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Failed to check token blacklist", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
		revoked, err = s.blacklist.IsRevokedForCustomer(ctx, claims.CustomerID, claims.GetIssuedAtTime())
		if err == nil && revoked {
			return nil, ErrTokenRevoked
		}
	}

	customerID, err := claims.GetCustomerUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, wrapErr(err)
	}

	pair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, c.Email, string(c.Role))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("customer_id", c.ID.String()))
	return toAuthResult(pair, c), nil
}

// Logout revokes the current access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("Customer logout", zap.String("customer_id", input.CustomerID.String()))
	if s.blacklist == nil {
		return nil
	}
	if input.AccessJTI != "" && input.AccessTTL > 0 {
		if err := s.blacklist.Revoke(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			return wrapErr(err)
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err != nil {
			// an unusable refresh token needs no revocation
			return nil
		}
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

// GetProfile returns the caller's account
func (s *AuthService) GetProfile(ctx context.Context, customerID uuid.UUID) (*ProfileResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(c)
	return &resp, nil
}

// UpdateProfile changes the name, phone and address used at checkout
func (s *AuthService) UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*ProfileResponse, error) {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateProfile(input.Name, input.Phone, input.Address); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, wrapErr(err)
	}
	return s.GetProfile(ctx, customerID)
}

// ChangePassword changes the password and revokes every token issued so far
func (s *AuthService) ChangePassword(ctx context.Context, customerID uuid.UUID, input ChangePasswordInput) error {
	c, err := s.load(ctx, customerID)
	if err != nil {
		return err
	}
	if err := c.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return wrapErr(err)
	}
	if s.blacklist != nil {
		ttl := s.jwtService.GetRefreshTokenExpiration()
		if err := s.blacklist.RevokeAllForCustomer(ctx, c.ID.String(), ttl); err != nil {
			s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
		}
	}
	s.logger.Info("Password changed", zap.String("customer_id", c.ID.String()))
	return nil
}

func (s *AuthService) load(ctx context.Context, customerID uuid.UUID) (*identity.Customer, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (s *AuthService) issue(c *identity.Customer) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		CustomerID: c.ID,
		Email:      c.Email,
		Role:       string(c.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return toAuthResult(pair, c), nil
}

func toAuthResult(pair *auth.TokenPair, c *identity.Customer) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Customer:              ToProfileResponse(c),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}

func wrapErr(err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
}
