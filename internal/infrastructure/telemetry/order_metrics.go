package telemetry

import (
	"context"
	"fmt"

	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics turns order lifecycle events into business metrics. It is
// subscribed to the event bus, so services never call it directly.
type OrderMetrics struct {
	placed       metric.Int64Counter
	orderValue   metric.Float64Histogram
	transitions  metric.Int64Counter
	returns      metric.Int64Counter
	proofUploads metric.Int64Counter
	prom         *PromMetrics
}

// NewOrderMetrics creates the instruments on meter. prom may be nil.
func NewOrderMetrics(meter metric.Meter, prom *PromMetrics) (*OrderMetrics, error) {
	m := &OrderMetrics{prom: prom}
	var err error
	if m.placed, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed at checkout"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("orders placed counter: %w", err)
	}
	if m.orderValue, err = meter.Float64Histogram("storefront.orders.value",
		metric.WithDescription("Order total including shipping"),
		metric.WithUnit("IDR"),
		metric.WithExplicitBucketBoundaries(50000, 100000, 250000, 500000, 1000000, 2500000, 5000000)); err != nil {
		return nil, fmt.Errorf("order value histogram: %w", err)
	}
	if m.transitions, err = meter.Int64Counter("storefront.orders.transitions",
		metric.WithDescription("Order status transitions"),
		metric.WithUnit("{transition}")); err != nil {
		return nil, fmt.Errorf("transitions counter: %w", err)
	}
	if m.returns, err = meter.Int64Counter("storefront.returns.requested",
		metric.WithDescription("Return requests filed"),
		metric.WithUnit("{return}")); err != nil {
		return nil, fmt.Errorf("returns counter: %w", err)
	}
	if m.proofUploads, err = meter.Int64Counter("storefront.payment_proofs.submitted",
		metric.WithDescription("Payment proofs uploaded"),
		metric.WithUnit("{proof}")); err != nil {
		return nil, fmt.Errorf("payment proofs counter: %w", err)
	}
	return m, nil
}

// Handle records the metric for one event
func (m *OrderMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		attrs := metric.WithAttributes(
			attribute.String("payment_method", string(e.PaymentMethod)),
			attribute.String("courier", e.Courier),
		)
		m.placed.Add(ctx, 1, attrs)
		m.orderValue.Record(ctx, e.Total.InexactFloat64(), attrs)
		if m.prom != nil {
			m.prom.OrdersPlaced.WithLabelValues(string(e.PaymentMethod)).Inc()
		}
	case *order.OrderStatusChangedEvent:
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(e.From)),
			attribute.String("to", string(e.To)),
		))
	case *order.ReturnRequestedEvent:
		m.returns.Add(ctx, 1)
	case *order.PaymentProofSubmittedEvent:
		m.proofUploads.Add(ctx, 1)
	}
	return nil
}

// EventTypes returns the order lifecycle event types
func (m *OrderMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypeReturnRequested,
		order.EventTypePaymentProofSubmitted,
	}
}

var _ shared.EventHandler = (*OrderMetrics)(nil)
