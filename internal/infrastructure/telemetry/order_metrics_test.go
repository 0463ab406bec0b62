package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestOrderMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prom := NewPromMetrics("storefront")
	m, err := NewOrderMetrics(provider.Meter("test"), prom)
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	created := &order.OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderCreated, order.AggregateTypeOrder, uuid.New(), now),
		PaymentMethod:   order.PaymentMethodBankTransfer,
		Courier:         "JNE",
		Total:           decimal.NewFromInt(270000),
	}
	changed := &order.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, uuid.New(), now),
		From:            order.StatusShipped,
		To:              order.StatusArrived,
	}
	returned := &order.ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeReturnRequested, order.AggregateTypeReturnRequest, uuid.New(), now),
	}

	for _, e := range []shared.DomainEvent{created, created, changed, returned} {
		require.NoError(t, m.Handle(ctx, e))
	}

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["storefront.orders.placed"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.orders.transitions"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.returns.requested"]))

	hist, ok := got["storefront.orders.value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, 540000.0, hist.DataPoints[0].Sum)

	assert.Equal(t, 2.0, testutil.ToFloat64(prom.OrdersPlaced.WithLabelValues(string(order.PaymentMethodBankTransfer))))
}

func TestOrderMetrics_IgnoresOtherEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewOrderMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	other := &struct{ shared.BaseDomainEvent }{
		BaseDomainEvent: shared.NewBaseDomainEvent("CartCleared", "Cart", uuid.New(), time.Now()),
	}
	assert.NoError(t, m.Handle(context.Background(), other))
	assert.Len(t, m.EventTypes(), 4)
}
