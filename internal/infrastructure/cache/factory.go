package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store on client when one is given, otherwise
// tries to connect, and falls back to memory when allowed.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context, client *redis.Client) (shared.IdempotencyStore, error) {
	if client != nil {
		f.logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	}

	if f.redisConfig.Enabled {
		own, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			store := NewRedisIdempotencyStore(own, "")
			store.ownClient = true
			f.logger.Info("using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
			"retried checkouts are only deduplicated per instance",
			zap.Error(err),
		)
	}

	return NewInMemoryIdempotencyStore(), nil
}
