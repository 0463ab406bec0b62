package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	kinds      []string
	published  []publishedMessage
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declared = append(c.declared, name)
	c.kinds = append(c.kinds, kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func newTestForwarder(t *testing.T, ch *fakeChannel) (*AMQPForwarder, *telemetry.PromMetrics) {
	t.Helper()
	serializer := NewEventSerializer()
	RegisterOrderEvents(serializer)
	metrics := telemetry.NewPromMetrics("storefront")
	f, err := newAMQPForwarder(ch, "storefront.orders", serializer, metrics, zap.NewNop())
	require.NoError(t, err)
	return f, metrics
}

func TestAMQPForwarder_DeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	newTestForwarder(t, ch)

	assert.Equal(t, []string{"storefront.orders"}, ch.declared)
	assert.Equal(t, []string{amqp.ExchangeTopic}, ch.kinds)
}

func TestAMQPForwarder_Handle(t *testing.T) {
	ch := &fakeChannel{}
	f, metrics := newTestForwarder(t, ch)
	event := newTestEvent("OrderStatusChanged")

	require.NoError(t, f.Handle(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "storefront.orders", got.exchange)
	assert.Equal(t, "order.status_changed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, event.EventID().String(), got.msg.MessageId)

	var env Envelope
	require.NoError(t, json.Unmarshal(got.msg.Body, &env))
	assert.Equal(t, event.EventID(), env.ID)
	assert.Equal(t, "OrderStatusChanged", env.Type)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsForwarded.WithLabelValues("OrderStatusChanged", "ok")))
}

func TestAMQPForwarder_DeliveryDecodesToTypedEvent(t *testing.T) {
	ch := &fakeChannel{}
	f, _ := newTestForwarder(t, ch)
	o := &order.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       "ORD-20260314-00001",
		CustomerID:        uuid.New(),
		Status:            order.StatusPacked,
	}
	sent := order.NewOrderStatusChangedEvent(o, order.StatusConfirmed, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	require.NoError(t, f.Handle(context.Background(), sent))
	require.Len(t, ch.published, 1)

	consumer := NewEventSerializer()
	RegisterOrderEvents(consumer)
	decoded, err := consumer.Deserialize(ch.published[0].msg.Body)
	require.NoError(t, err)
	got, ok := decoded.(*order.OrderStatusChangedEvent)
	require.True(t, ok, "got %T", decoded)
	assert.Equal(t, sent.EventID(), got.EventID())
	assert.Equal(t, o.ID, got.OrderID)
	assert.Equal(t, "ORD-20260314-00001", got.OrderNumber)
	assert.Equal(t, order.StatusConfirmed, got.From)
	assert.Equal(t, order.StatusPacked, got.To)
	assert.True(t, sent.OccurredAt().Equal(got.OccurredAt()))
}

func TestAMQPForwarder_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	f, metrics := newTestForwarder(t, ch)

	err := f.Handle(context.Background(), newTestEvent("OrderCreated"))
	assert.ErrorContains(t, err, "channel closed")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsForwarded.WithLabelValues("OrderCreated", "error")))
}

func TestAMQPForwarder_Close(t *testing.T) {
	ch := &fakeChannel{}
	f, _ := newTestForwarder(t, ch)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.True(t, ch.closed)

	err := f.Handle(context.Background(), newTestEvent("OrderCreated"))
	assert.ErrorIs(t, err, ErrForwarderClosed)
}

func TestRoutingKey(t *testing.T) {
	tests := map[string]string{
		"OrderCreated":          "order.created",
		"OrderStatusChanged":    "order.status_changed",
		"ReturnRequested":       "order.return_requested",
		"PaymentProofSubmitted": "order.payment_proof_submitted",
	}
	for eventType, want := range tests {
		assert.Equal(t, want, RoutingKey(eventType), eventType)
	}
	assert.ElementsMatch(t, []string{"OrderCreated", "OrderStatusChanged", "ReturnRequested", "PaymentProofSubmitted"}, (&AMQPForwarder{}).EventTypes())
}
