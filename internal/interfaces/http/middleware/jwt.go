package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/auth"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey     = "jwt_claims"
	JWTCustomerIDKey = "jwt_customer_id"
	JWTRoleKey       = "jwt_role"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, nil, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			// Individual logout
			if claims.ID != "" {
				revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
				if err != nil {
					// fail open: the blacklist is an optimisation over token expiry
					if cfg.Logger != nil {
						cfg.Logger.Error("Failed to check token blacklist",
							zap.String("jti", claims.ID),
							zap.Error(err))
					}
				} else if revoked {
					handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
					return
				}
			}

			// Every session of the customer (password change)
			revoked, err := cfg.TokenBlacklist.IsRevokedForCustomer(ctx, claims.CustomerID, claims.GetIssuedAtTime())
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check customer token revocation",
						zap.String("customer_id", claims.CustomerID),
						zap.Error(err))
				}
			} else if revoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Session has been invalidated")
				return
			}
		}

		setClaims(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("customer_id", claims.CustomerID),
				zap.String("role", claims.Role),
			)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTCustomerIDKey, claims.CustomerID)
	c.Set(JWTRoleKey, claims.Role)

	ctx := c.Request.Context()
	ctx, _ = logger.WithCustomerID(ctx, logger.FromContext(ctx), claims.CustomerID)
	c.Request = c.Request.WithContext(ctx)
}

// handleAuthError answers 401 with a code describing why the token was refused
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := shared.CodeNotAuthenticated
	msg := shared.ErrNotAuthenticated.Message
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	default:
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, c.GetString(RequestIDKey)))
}

// RequireStaff rejects requests whose token does not carry the staff role.
// It must run after JWTAuthMiddleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				shared.CodeNotAuthenticated, shared.ErrNotAuthenticated.Message, c.GetString(RequestIDKey)))
			return
		}
		if !claims.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				shared.CodeNotAuthorized, "Staff access required", c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTCustomerID retrieves the customer ID from JWT claims in context
func GetJWTCustomerID(c *gin.Context) string {
	return c.GetString(JWTCustomerIDKey)
}

// GetCustomerUUID parses the authenticated customer ID
func GetCustomerUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetJWTCustomerID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present and
// lets anonymous requests through
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
