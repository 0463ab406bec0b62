package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var _ apporder.ProofStorage = (*BreakerProofStorage)(nil)

// ErrStorageUnavailable is returned while the breaker is open
var ErrStorageUnavailable = errors.New("proof storage is unavailable")

// BreakerSettings tunes the circuit breaker around the object store
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // calls allowed while half-open
	Interval     time.Duration // window for counting failures while closed
	Timeout      time.Duration // time spent open before probing again
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings trips after 60% of at least 3 calls fail
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "proof-storage",
		MaxRequests:  3,
		Interval:     15 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// BreakerProofStorage guards a ProofStorage with a circuit breaker so a dead
// object store fails uploads fast instead of holding request goroutines.
type BreakerProofStorage struct {
	next    apporder.ProofStorage
	cb      *gobreaker.CircuitBreaker
	name    string
	metrics *telemetry.PromMetrics
	logger  *zap.Logger
}

// NewBreakerProofStorage wraps next. metrics may be nil.
func NewBreakerProofStorage(next apporder.ProofStorage, settings BreakerSettings, metrics *telemetry.PromMetrics, logger *zap.Logger) *BreakerProofStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BreakerProofStorage{
		next:    next,
		name:    settings.Name,
		metrics: metrics,
		logger:  logger,
	}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: b.onStateChange,
		// a caller giving up or a bad key says nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrKeyRequired)
		},
	})
	b.setStateGauge(gobreaker.StateClosed)
	return b
}

func (b *BreakerProofStorage) onStateChange(name string, from, to gobreaker.State) {
	b.setStateGauge(to)
	b.logger.Warn("circuit breaker state changed",
		zap.String("circuit", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}

func (b *BreakerProofStorage) setStateGauge(state gobreaker.State) {
	if b.metrics == nil {
		return
	}
	var v float64
	switch state {
	case gobreaker.StateOpen:
		v = 1
	case gobreaker.StateHalfOpen:
		v = 2
	}
	b.metrics.CircuitBreakerState.WithLabelValues(b.name).Set(v)
}

func (b *BreakerProofStorage) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err == nil {
		return result, nil
	}
	if b.metrics != nil {
		b.metrics.CircuitBreakerFailures.WithLabelValues(b.name).Inc()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit %s: %v", ErrStorageUnavailable, b.name, err)
	}
	return nil, err
}

// Upload stores the image through the breaker
func (b *BreakerProofStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Upload(ctx, key, contentType, body, size)
	})
	return err
}

// Delete removes the image through the breaker
func (b *BreakerProofStorage) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// PresignURL signs a download URL through the breaker
func (b *BreakerProofStorage) PresignURL(ctx context.Context, key string) (string, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.PresignURL(ctx, key)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State returns the breaker state name
func (b *BreakerProofStorage) State() string {
	return b.cb.State().String()
}
