package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrForwarderClosed is returned when publishing after Close
var ErrForwarderClosed = errors.New("amqp forwarder is closed")

// amqpChannel is the part of *amqp.Channel the forwarder uses
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder publishes order events to a RabbitMQ topic exchange. The
// routing key is "order." plus the snake cased event type, e.g.
// order.status_changed.
type AMQPForwarder struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         amqpChannel
	exchange   string
	serializer *EventSerializer
	metrics    *telemetry.PromMetrics
	logger     *zap.Logger
	closed     bool
}

// DialAMQPForwarder connects to RabbitMQ and declares the exchange
func DialAMQPForwarder(cfg config.RabbitMQConfig, serializer *EventSerializer, metrics *telemetry.PromMetrics, logger *zap.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	f, err := newAMQPForwarder(ch, cfg.Exchange, serializer, metrics, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	f.conn = conn
	return f, nil
}

func newAMQPForwarder(ch amqpChannel, exchange string, serializer *EventSerializer, metrics *telemetry.PromMetrics, logger *zap.Logger) (*AMQPForwarder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPForwarder{
		ch:         ch,
		exchange:   exchange,
		serializer: serializer,
		metrics:    metrics,
		logger:     logger.Named("amqp_forwarder"),
	}, nil
}

// Handle serializes the event and publishes it as a persistent message
func (f *AMQPForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	body, err := f.serializer.Serialize(event)
	if err != nil {
		f.observe(event.EventType(), "error")
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		f.observe(event.EventType(), "error")
		return ErrForwarderClosed
	}

	err = f.ch.PublishWithContext(ctx, f.exchange, RoutingKey(event.EventType()), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID().String(),
		Type:         event.EventType(),
		Timestamp:    event.OccurredAt(),
		Body:         body,
	})
	if err != nil {
		f.observe(event.EventType(), "error")
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}
	f.observe(event.EventType(), "ok")
	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// EventTypes returns the order event types
func (f *AMQPForwarder) EventTypes() []string {
	return OrderEventTypes()
}

// Close closes the channel and connection
func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	err := f.ch.Close()
	if f.conn != nil {
		if connErr := f.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
	}
	return err
}

func (f *AMQPForwarder) observe(eventType, result string) {
	if f.metrics != nil {
		f.metrics.EventsForwarded.WithLabelValues(eventType, result).Inc()
	}
}

// RoutingKey maps an event type to its routing key
func RoutingKey(eventType string) string {
	name := strings.TrimPrefix(eventType, "Order")
	var b strings.Builder
	b.WriteString("order.")
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ shared.EventHandler = (*AMQPForwarder)(nil)
