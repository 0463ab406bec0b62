package models

import (
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// RatingModel is the persistence model for a product rating. The unique
// index enforces one rating per customer, order and product.
type RatingModel struct {
	BaseModel
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_unique,priority:2"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_unique,priority:1"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_rating_unique,priority:3"`
	Stars      int       `gorm:"not null"`
	Review     string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RatingModel) TableName() string {
	return "ratings"
}

// ToDomain converts the persistence model to a domain Rating
func (m *RatingModel) ToDomain() *order.Rating {
	return &order.Rating{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		CustomerID: m.CustomerID,
		ProductID:  m.ProductID,
		Stars:      m.Stars,
		Review:     m.Review,
	}
}

// RatingFromDomain creates a persistence model from a domain Rating
func RatingFromDomain(r *order.Rating) *RatingModel {
	m := &RatingModel{
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		ProductID:  r.ProductID,
		Stars:      r.Stars,
		Review:     r.Review,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
