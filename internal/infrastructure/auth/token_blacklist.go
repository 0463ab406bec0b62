package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire (logout, password change)
type TokenBlacklist interface {
	// Revoke blacklists a token's JTI for ttl, normally its remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked checks if a token's JTI is blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeAllForCustomer rejects every token issued to the customer up to now
	RevokeAllForCustomer(ctx context.Context, customerID string, ttl time.Duration) error

	// IsRevokedForCustomer reports whether a token issued at issuedAt was revoked
	// by RevokeAllForCustomer
	IsRevokedForCustomer(ctx context.Context, customerID string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "storefront:token:revoked:"

// RedisTokenBlacklist implements TokenBlacklist on Redis so revocations are
// shared by every API instance
type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist creates a blacklist on an existing Redis client
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string {
	return blacklistKeyPrefix + "jti:" + jti
}

func customerKey(customerID string) string {
	return blacklistKeyPrefix + "customer:" + customerID
}

// Revoke blacklists a token's JTI
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if a token's JTI is blacklisted
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// RevokeAllForCustomer stores the revocation time; older tokens are rejected
func (b *RedisTokenBlacklist) RevokeAllForCustomer(ctx context.Context, customerID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, customerKey(customerID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke customer tokens: %w", err)
	}
	return nil
}

// IsRevokedForCustomer checks a token's issue time against the revocation time
func (b *RedisTokenBlacklist) IsRevokedForCustomer(ctx context.Context, customerID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, customerKey(customerID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check customer revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is a single-process blacklist used when Redis is
// disabled and in tests
type InMemoryTokenBlacklist struct {
	mu        sync.Mutex
	revoked   map[string]time.Time // jti -> expiry
	customers map[string]time.Time // customer -> revocation time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revoked:   make(map[string]time.Time),
		customers: make(map[string]time.Time),
	}
}

// Revoke blacklists a token's JTI
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked checks if a token's JTI is blacklisted and not yet expired
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revoked, jti)
		return false, nil
	}
	return true, nil
}

// RevokeAllForCustomer records the revocation time
func (b *InMemoryTokenBlacklist) RevokeAllForCustomer(_ context.Context, customerID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers[customerID] = time.Now()
	return nil
}

// IsRevokedForCustomer checks a token's issue time against the revocation time
func (b *InMemoryTokenBlacklist) IsRevokedForCustomer(_ context.Context, customerID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	revokedAt, ok := b.customers[customerID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(revokedAt), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
