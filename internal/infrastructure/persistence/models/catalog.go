package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate root
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	Brand         string          `gorm:"type:varchar(100);not null;index"`
	Category      string          `gorm:"type:varchar(100);not null;index"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Images        []string        `gorm:"type:text;serializer:json"`
	Sizes         []string        `gorm:"type:text;serializer:json"`
	IsNew         bool            `gorm:"not null;default:false"`
	Active        bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Brand:             m.Brand,
		Category:          m.Category,
		Description:       m.Description,
		Price:             m.Price,
		OriginalPrice:     m.OriginalPrice,
		Images:            m.Images,
		Sizes:             m.Sizes,
		IsNew:             m.IsNew,
		Active:            m.Active,
	}
}

// ProductFromDomain creates a persistence model from a domain Product
func ProductFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        p.Images,
		Sizes:         p.Sizes,
		IsNew:         p.IsNew,
		Active:        p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// FavoriteModel is a wishlist entry
type FavoriteModel struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID  uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FavoriteModel) TableName() string {
	return "favorites"
}
