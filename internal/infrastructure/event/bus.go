package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches domain events synchronously to subscribed
// handlers. Handler failures are logged and never reach the publisher, so a
// broken subscriber cannot fail a committed order command.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler // eventType -> handlers
	wildcard []shared.EventHandler            // handlers for all events
	logger   *zap.Logger
	running  atomic.Bool
	inFlight sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers events to the type's handlers and to wildcard handlers.
// Events published before Start or after Stop are dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Debug("event bus not running, dropping events", zap.Int("count", len(events)))
		return nil
	}
	b.inFlight.Add(1)
	defer b.inFlight.Done()

	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes apply; a handler reporting no types receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
		b.logger.Debug("wildcard handler subscribed")
		return
	}
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wildcard = removeHandler(b.wildcard, handler)
	for t, handlers := range b.handlers {
		if remaining := removeHandler(handlers, handler); len(remaining) > 0 {
			b.handlers[t] = remaining
		} else {
			delete(b.handlers, t)
		}
	}
}

// HandlerCount returns the number of handlers that receive eventType
func (b *InMemoryEventBus) HandlerCount(eventType string) int {
	return len(b.handlersFor(eventType))
}

// Start starts accepting events
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops accepting events and waits for in-flight deliveries
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typed := b.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	result = append(result, typed...)
	return append(result, b.wildcard...)
}

// dispatch turns a handler panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
