package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Sort orders supported by product listing
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductFilter narrows product listing
type ProductFilter struct {
	shared.Filter
	Brand    string
	Category string
	Sort     string
	OnlyNew  bool
}

// ValidSort reports whether sort is a supported order
func ValidSort(sort string) bool {
	switch sort {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDs returns the products keyed by ID; missing IDs are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	Brands(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	Save(ctx context.Context, p *Product) error
}

// FavoriteRepository defines the interface for favorite persistence
type FavoriteRepository interface {
	Add(ctx context.Context, f *Favorite) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) error
	Exists(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Favorite, error)
}
