package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber allows subscribing to domain events
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publishing and subscribing with a lifecycle
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
