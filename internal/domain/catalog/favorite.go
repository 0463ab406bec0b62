package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Favorite marks a product on a customer's wishlist. A product appears at
// most once per customer.
type Favorite struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	CreatedAt  time.Time
}

// NewFavorite creates a wishlist entry
func NewFavorite(customerID, productID uuid.UUID, now time.Time) (*Favorite, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product ID cannot be empty")
	}
	return &Favorite{CustomerID: customerID, ProductID: productID, CreatedAt: now}, nil
}
