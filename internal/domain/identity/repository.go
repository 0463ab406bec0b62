package identity

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for account persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, c *Customer) error
}
