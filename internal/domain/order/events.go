package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeOrder         = "Order"
	AggregateTypeReturnRequest = "ReturnRequest"
	AggregateTypePaymentProof  = "PaymentProof"
)

// Event type constants
const (
	EventTypeOrderCreated          = "OrderCreated"
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
	EventTypeReturnRequested       = "ReturnRequested"
	EventTypePaymentProofSubmitted = "PaymentProofSubmitted"
)

// OrderCreatedEvent is raised when a customer places an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Courier       string          `json:"courier"`
	Status        Status          `json:"status"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.CreatedAt),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		PaymentMethod:   o.PaymentMethod,
		Courier:         o.Courier,
		Status:          o.Status,
		ItemCount:       o.ItemCount(),
		Subtotal:        o.Subtotal,
		Total:           o.Total,
	}
}

// OrderStatusChangedEvent is raised on every lifecycle transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from Status, at time.Time) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, at),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		From:            from,
		To:              o.Status,
	}
}

// ReturnRequestedEvent is raised when a customer files a return
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	ReturnID   uuid.UUID `json:"return_id"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ItemCount  int       `json:"item_count"`
}

// NewReturnRequestedEvent creates a new ReturnRequestedEvent
func NewReturnRequestedEvent(r *ReturnRequest) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturnRequest, r.ID, r.CreatedAt),
		ReturnID:        r.ID,
		OrderID:         r.OrderID,
		CustomerID:      r.CustomerID,
		ItemCount:       len(r.Items),
	}
}

// PaymentProofSubmittedEvent is raised when a transfer receipt is uploaded
type PaymentProofSubmittedEvent struct {
	shared.BaseDomainEvent
	ProofID    uuid.UUID `json:"proof_id"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewPaymentProofSubmittedEvent creates a new PaymentProofSubmittedEvent
func NewPaymentProofSubmittedEvent(p *PaymentProof) *PaymentProofSubmittedEvent {
	return &PaymentProofSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentProofSubmitted, AggregateTypePaymentProof, p.ID, p.CreatedAt),
		ProofID:         p.ID,
		OrderID:         p.OrderID,
		CustomerID:      p.CustomerID,
	}
}
