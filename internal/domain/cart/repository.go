package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists carts. Each line is a row keyed by
// (customer, product, size) with its selection flag.
type Repository interface {
	// Load returns the customer's cart, empty when nothing is stored
	Load(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// Save replaces the stored lines with the cart's current state
	Save(ctx context.Context, c *Cart) error

	// RemoveLines deletes exactly the given lines
	RemoveLines(ctx context.Context, customerID uuid.UUID, keys []LineKey) error

	// Clear deletes every line of the customer's cart
	Clear(ctx context.Context, customerID uuid.UUID) error
}
