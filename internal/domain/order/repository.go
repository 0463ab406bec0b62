package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForCustomer finds an order scoped to the customer who placed it
	FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*Order, error)

	// FindByCustomer lists a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountByCustomer counts a customer's orders with the same filter
	CountByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error)

	// FindAll lists orders across customers (staff view)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders across customers with the same filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindDueForAutoTransition pages through SHIPPED and ARRIVED orders
	// that may have a time-driven transition due at now
	FindDueForAutoTransition(ctx context.Context, now time.Time, limit int, afterID uuid.UUID) ([]Order, error)

	// Create inserts an order with all of its items
	Create(ctx context.Context, order *Order) error

	// SaveWithLock updates the order with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// GenerateOrderNumber generates a unique order number (ORD-YYYYMMDD-NNNNN)
	GenerateOrderNumber(ctx context.Context, now time.Time) (string, error)

	// NextVirtualAccountSequence returns the next virtual account sequence
	NextVirtualAccountSequence(ctx context.Context) (int64, error)
}

// ReturnRepository defines the interface for return request persistence
type ReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRequest, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]ReturnRequest, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReturnRequest, error)
	Create(ctx context.Context, r *ReturnRequest) error
	SaveWithLock(ctx context.Context, r *ReturnRequest) error
}

// PaymentProofRepository defines the interface for payment proof persistence
type PaymentProofRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentProof, error)
	FindPending(ctx context.Context, filter shared.Filter) ([]PaymentProof, error)
	Create(ctx context.Context, p *PaymentProof) error
	SaveWithLock(ctx context.Context, p *PaymentProof) error
}

// RatingRepository defines the interface for rating persistence
type RatingRepository interface {
	// Create inserts a rating, returning ErrAlreadyRated on a duplicate
	// (customer, order, product)
	Create(ctx context.Context, r *Rating) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Rating, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Rating, error)
	Summaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]RatingSummary, error)
}
