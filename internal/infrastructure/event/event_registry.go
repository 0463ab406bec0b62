package event

import (
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// RegisterOrderEvents registers the order lifecycle events with the serializer
func RegisterOrderEvents(serializer *EventSerializer) {
	serializer.Register(order.EventTypeOrderCreated, &order.OrderCreatedEvent{})
	serializer.Register(order.EventTypeOrderStatusChanged, &order.OrderStatusChangedEvent{})
	serializer.Register(order.EventTypeReturnRequested, &order.ReturnRequestedEvent{})
	serializer.Register(order.EventTypePaymentProofSubmitted, &order.PaymentProofSubmittedEvent{})
}

// OrderEventTypes lists the order lifecycle event types
func OrderEventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypeReturnRequested,
		order.EventTypePaymentProofSubmitted,
	}
}
