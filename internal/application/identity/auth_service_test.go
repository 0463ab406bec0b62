package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/auth"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
)

// MockCustomerRepository is a mock implementation of identity.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *identity.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

const testPassword = "rahasia123"

func newAuthService(t *testing.T) (*AuthService, *MockCustomerRepository, *auth.InMemoryTokenBlacklist, *auth.JWTService) {
	t.Helper()
	repo := new(MockCustomerRepository)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, jwtService, blacklist, nil), repo, blacklist, jwtService
}

func newCustomer(t *testing.T) *identity.Customer {
	t.Helper()
	c, err := identity.NewCustomer("siti@example.com", testPassword, "Siti Aminah")
	require.NoError(t, err)
	return c
}

func TestAuthService_Register(t *testing.T) {
	svc, repo, _, jwtService := newAuthService(t)
	repo.On("ExistsByEmail", mock.Anything, "siti@example.com").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Customer")).Return(nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email: "  Siti@Example.com ", Password: testPassword, Name: "Siti Aminah",
	})
	require.NoError(t, err)

	assert.Equal(t, "siti@example.com", result.Customer.Email)
	assert.Equal(t, "customer", result.Customer.Role)
	assert.False(t, result.Customer.HasShippingInfo)

	claims, err := jwtService.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.Customer.ID.String(), claims.CustomerID)
	assert.False(t, claims.IsStaff())
}

func TestAuthService_RegisterRejections(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	repo.On("ExistsByEmail", mock.Anything, "siti@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "siti@example.com", Password: testPassword, Name: "Siti"})
	assert.ErrorIs(t, err, identity.ErrEmailTaken)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "siti@example.com", Password: "short", Name: "Siti"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_PASSWORD", de.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByEmail", mock.Anything, "siti@example.com").Return(c, nil)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, identity.ErrCustomerNotFound)
	repo.On("Save", mock.Anything, c).Return(nil)

	result, err := svc.Login(context.Background(), LoginInput{Email: "SITI@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, c.ID, result.Customer.ID)
	assert.NotNil(t, c.LastLoginAt)

	_, err = svc.Login(context.Background(), LoginInput{Email: "siti@example.com", Password: "salah12345"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestAuthService_LoginSurvivesFailedLoginStamp(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByEmail", mock.Anything, "siti@example.com").Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(errors.New("read-only transaction"))

	_, err := svc.Login(context.Background(), LoginInput{Email: "siti@example.com", Password: testPassword})
	assert.NoError(t, err)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByEmail", mock.Anything, c.Email).Return(c, nil)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{Email: c.Email, Password: testPassword})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_Logout(t *testing.T) {
	svc, repo, blacklist, jwtService := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByEmail", mock.Anything, c.Email).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{Email: c.Email, Password: testPassword})
	require.NoError(t, err)
	access, err := jwtService.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	err = svc.Logout(context.Background(), LogoutInput{
		CustomerID:   c.ID,
		AccessJTI:    access.ID,
		AccessTTL:    access.GetRemainingTTL(),
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)

	revoked, err := blacklist.IsRevoked(context.Background(), access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Profile(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	resp, err := svc.UpdateProfile(context.Background(), c.ID, UpdateProfileInput{
		Name: "Siti A.", Phone: "081234567890", Address: "Jl. Dago 12, Bandung",
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti A.", resp.Name)
	assert.True(t, resp.HasShippingInfo)

	_, err = svc.UpdateProfile(context.Background(), c.ID, UpdateProfileInput{Name: "Siti", Phone: "abc"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_PHONE", de.Code)

	_, err = svc.GetProfile(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestAuthService_ChangePasswordRevokesSessions(t *testing.T) {
	svc, repo, _, _ := newAuthService(t)
	c := newCustomer(t)
	repo.On("FindByEmail", mock.Anything, c.Email).Return(c, nil)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{Email: c.Email, Password: testPassword})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), c.ID, ChangePasswordInput{OldPassword: "wrong1234", NewPassword: "baru45678"})
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), c.ID, ChangePasswordInput{
		OldPassword: testPassword, NewPassword: "baru45678",
	}))
	assert.True(t, c.VerifyPassword("baru45678"))

	_, err = svc.Refresh(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
