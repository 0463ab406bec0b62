package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Star bounds of a product rating
const (
	MinStars = 1
	MaxStars = 5
)

// Rating is a customer's review of a product bought in a completed order.
// There is at most one rating per customer, order and product.
type Rating struct {
	shared.BaseEntity
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Stars      int
	Review     string
}

// Rate creates a rating for one product of a completed order
func (o *Order) Rate(customerID, productID uuid.UUID, stars int, review string, now time.Time) (*Rating, error) {
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return nil, err
	}
	if o.Status != StatusCompleted {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition, "Only completed orders can be rated")
	}
	if !o.HasProduct(productID) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product is not part of this order")
	}
	if stars < MinStars || stars > MaxStars {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Rating must be between 1 and 5 stars")
	}

	r := &Rating{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		CustomerID: customerID,
		ProductID:  productID,
		Stars:      stars,
		Review:     strings.TrimSpace(review),
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	return r, nil
}

// ProductIDs returns the distinct products of the order
func (o *Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// RatingSummary aggregates the ratings of a product
type RatingSummary struct {
	ProductID uuid.UUID
	Average   float64
	Count     int64
}
