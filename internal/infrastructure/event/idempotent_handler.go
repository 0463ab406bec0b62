package event

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyMetrics tracks idempotency-related statistics
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// Stats returns a snapshot of the current metrics
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// IdempotencyStats is a snapshot of idempotency metrics
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandlerConfig controls how long processed event IDs are remembered
type IdempotentHandlerConfig struct {
	TTL       time.Duration
	KeyPrefix string
	// FailOpen processes the event when the store is unreachable
	FailOpen bool
}

// DefaultIdempotentHandlerConfig returns the default handler configuration
func DefaultIdempotentHandlerConfig() IdempotentHandlerConfig {
	return IdempotentHandlerConfig{
		TTL:       24 * time.Hour,
		KeyPrefix: "event:",
		FailOpen:  true,
	}
}

// IdempotentHandler wraps an EventHandler so each event ID is handled once,
// even when the same event is published again
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  IdempotentHandlerConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// IdempotentHandlerOption is a functional option for IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config IdempotentHandlerConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithIdempotencyMetrics sets the metrics collector
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.metrics = metrics
	}
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  DefaultIdempotentHandlerConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle claims the event ID, runs the wrapped handler and records the
// outcome. A failed run releases the claim so a redelivery is processed.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.config.KeyPrefix + event.EventID().String()

	claimed, _, err := h.store.Claim(ctx, key, h.config.TTL)
	if err != nil {
		if !h.config.FailOpen {
			h.metrics.EventsFailed.Add(1)
			return fmt.Errorf("idempotency check failed: %w", err)
		}
		h.logger.Warn("idempotency store unavailable, processing event anyway",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return h.run(ctx, event)
	}
	if !claimed {
		h.metrics.EventsDuplicate.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.run(ctx, event); err != nil {
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("failed to release event claim", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}

	if err := h.store.Complete(ctx, key, event.EventType(), h.config.TTL); err != nil {
		h.logger.Warn("failed to mark event processed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (h *IdempotentHandler) run(ctx context.Context, event shared.DomainEvent) error {
	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		return err
	}
	h.metrics.EventsProcessed.Add(1)
	return nil
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Metrics returns the handler's counters
func (h *IdempotentHandler) Metrics() *IdempotencyMetrics {
	return h.metrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
