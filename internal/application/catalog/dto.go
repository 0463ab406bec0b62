package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// ListProductsInput narrows the product listing
type ListProductsInput struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Brand    string `form:"brand" binding:"omitempty,max=100"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name"`
	OnlyNew  bool   `form:"only_new"`
}

// RatingSummary is a product's average star rating
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent int             `json:"discount_percent"`
	Images          []string        `json:"images"`
	Sizes           []string        `json:"sizes"`
	IsNew           bool            `json:"is_new"`
	Available       bool            `json:"available"`
	Rating          *RatingSummary  `json:"rating,omitempty"`
}

// FavoriteResponse is a wishlist entry with its product
type FavoriteResponse struct {
	ProductID uuid.UUID        `json:"product_id"`
	CreatedAt time.Time        `json:"created_at"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// ToProductResponse converts a product and its optional rating summary
func ToProductResponse(p *catalog.Product, summary *order.RatingSummary) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	sizes := p.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	resp := ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		DiscountPercent: p.DiscountPercent(),
		Images:          images,
		Sizes:           sizes,
		IsNew:           p.IsNew,
		Available:       p.Active,
	}
	if summary != nil && summary.Count > 0 {
		resp.Rating = &RatingSummary{Average: summary.Average, Count: summary.Count}
	}
	return resp
}
