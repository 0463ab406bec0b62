package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Catalog errors
var (
	ErrProductNotFound    = shared.NewDomainError("NOT_FOUND", "Product not found")
	ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is no longer available")
	ErrInvalidSize        = shared.NewDomainError("INVALID_SIZE", "Size is not available for this product")
)

// Product is a sellable sporting-goods item
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Brand         string
	Category      string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Images        []string
	Sizes         []string
	IsNew         bool
	Active        bool
}

// NewProduct creates an active product
func NewProduct(name, brand, category string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Brand:             strings.TrimSpace(brand),
		Category:          strings.TrimSpace(category),
		Price:             price,
		OriginalPrice:     price,
		Active:            true,
	}, nil
}

// SetDiscount lowers the selling price while keeping the original price
func (p *Product) SetDiscount(price decimal.Decimal) error {
	if !price.IsPositive() || price.GreaterThan(p.OriginalPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Discounted price must be positive and not above the original price")
	}
	p.Price = price
	return nil
}

// DiscountPercent returns the rounded percentage off the original price
func (p *Product) DiscountPercent() int {
	if !p.OriginalPrice.IsPositive() || !p.Price.LessThan(p.OriginalPrice) {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// PrimaryImage returns the first image, or "" when there is none
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasSizes reports whether the product is sold in size variants
func (p *Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// ResolveSize validates a requested size. Products without variants accept
// only the empty or default size.
func (p *Product) ResolveSize(size string) (string, error) {
	size = strings.TrimSpace(size)
	if !p.HasSizes() {
		if size == "" || size == "default" {
			return "", nil
		}
		return "", ErrInvalidSize
	}
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return s, nil
		}
	}
	return "", ErrInvalidSize
}

// EnsureAvailable rejects products that were taken off sale
func (p *Product) EnsureAvailable() error {
	if !p.Active {
		return ErrProductUnavailable
	}
	return nil
}

// Deactivate takes the product off sale
func (p *Product) Deactivate() {
	p.Active = false
}

// ProductIDs extracts the IDs of a product slice
func ProductIDs(products []Product) []uuid.UUID {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return ids
}
