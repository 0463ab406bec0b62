package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// EventRecorder is an event handler that keeps what it receives. With no
// event types it subscribes to everything.
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
}

// NewEventRecorder creates a recorder for the given event types
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

// Handle records the event and returns the configured error
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// FailWith makes later Handle calls return err after recording
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of the recorded events in arrival order
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// CountsFor counts the recorded events about one aggregate by type
func (r *EventRecorder) CountsFor(aggregateID uuid.UUID) map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Events() {
		if e.AggregateID() == aggregateID {
			counts[e.EventType()]++
		}
	}
	return counts
}

// OrderEvent is a bare event about an order
type OrderEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

// NewOrderEvent creates an event of eventType about the order
func NewOrderEvent(eventType string, orderID uuid.UUID) *OrderEvent {
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", orderID, time.Now().UTC()),
		Note:            "test data",
	}
}
