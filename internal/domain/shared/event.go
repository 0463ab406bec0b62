package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent provides the common event envelope fields
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID, at time.Time) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: at,
		AggID:     aggID,
		AggType:   aggType,
	}
}
