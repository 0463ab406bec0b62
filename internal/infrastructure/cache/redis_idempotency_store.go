package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

const (
	defaultIdempotencyPrefix = "storefront:idempotency:"
	pendingMarker            = "pending"
	donePrefix               = "done:"
)

// RedisIdempotencyStore implements IdempotencyStore on Redis so retried
// requests are recognised by every API instance
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	ownClient bool
}

// NewRedisIdempotencyStore creates a store on an existing Redis client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim reserves key with SETNX. An existing key either holds the completed
// result or marks a request still in flight.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	k := s.keyPrefix + key

	ok, err := s.client.SetNX(ctx, k, pendingMarker, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if ok {
		return true, "", nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Claim(ctx, key, ttl)
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if result, found := strings.CutPrefix(val, donePrefix); found {
		return false, result, nil
	}
	return false, "", nil
}

// Complete records the result of a claimed key
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, donePrefix+result, ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release drops a claim so the client may retry
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client when the store owns it
func (s *RedisIdempotencyStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
