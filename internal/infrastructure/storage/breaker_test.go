package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap/zaptest"
)

type flakyStorage struct {
	*MemoryProofStorage
	fail  bool
	calls int
}

func (f *flakyStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	f.calls++
	if f.fail {
		return errors.New("connection refused")
	}
	return f.MemoryProofStorage.Upload(ctx, key, contentType, body, size)
}

func newTestBreaker(t *testing.T, next *flakyStorage) (*BreakerProofStorage, *telemetry.PromMetrics) {
	t.Helper()
	metrics := telemetry.NewPromMetrics("storefront")
	settings := DefaultBreakerSettings()
	settings.Timeout = time.Hour
	return NewBreakerProofStorage(next, settings, metrics, zaptest.NewLogger(t)), metrics
}

func TestBreakerProofStorage_PassesThrough(t *testing.T) {
	next := &flakyStorage{MemoryProofStorage: NewMemoryProofStorage()}
	b, metrics := newTestBreaker(t, next)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "k.png", "image/png", strings.NewReader("img"), 3))
	u, err := b.PresignURL(ctx, "k.png")
	require.NoError(t, err)
	assert.Contains(t, u, "k.png")
	require.NoError(t, b.Delete(ctx, "k.png"))

	assert.Equal(t, "closed", b.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("proof-storage")))
}

func TestBreakerProofStorage_OpensAfterFailures(t *testing.T) {
	next := &flakyStorage{MemoryProofStorage: NewMemoryProofStorage(), fail: true}
	b, metrics := newTestBreaker(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.Upload(ctx, "k.png", "image/png", strings.NewReader("img"), 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrStorageUnavailable)
	}
	assert.Equal(t, "open", b.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("proof-storage")))

	err := b.Upload(ctx, "k.png", "image/png", strings.NewReader("img"), 3)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 3, next.calls, "open breaker does not reach the store")
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.CircuitBreakerFailures.WithLabelValues("proof-storage")))
}

func TestBreakerProofStorage_IgnoresCallerErrors(t *testing.T) {
	next := &flakyStorage{MemoryProofStorage: NewMemoryProofStorage()}
	b, _ := newTestBreaker(t, next)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Delete(ctx, ""), ErrKeyRequired)
	}
	assert.Equal(t, "closed", b.State())
}
