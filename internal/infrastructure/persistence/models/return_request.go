package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// ReturnRequestModel is the persistence model for a return request
type ReturnRequestModel struct {
	AggregateModel
	OrderID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Reason     string            `gorm:"type:text;not null"`
	Items      []ReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
	Status     string            `gorm:"type:varchar(20);not null;index"`
	AdminNotes string            `gorm:"type:text"`
	ReviewedAt *time.Time
}

// TableName returns the table name for GORM
func (ReturnRequestModel) TableName() string {
	return "return_requests"
}

// ToDomain converts the persistence model to a domain ReturnRequest
func (m *ReturnRequestModel) ToDomain() *order.ReturnRequest {
	r := &order.ReturnRequest{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		Reason:            m.Reason,
		Status:            order.ReturnStatus(m.Status),
		AdminNotes:        m.AdminNotes,
		ReviewedAt:        m.ReviewedAt,
		Items:             make([]order.ReturnItem, len(m.Items)),
	}
	for i, item := range m.Items {
		r.Items[i] = order.ReturnItem{
			ID:          item.ID,
			ReturnID:    item.ReturnID,
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
		}
	}
	return r
}

// ReturnRequestFromDomain creates a persistence model from a domain ReturnRequest
func ReturnRequestFromDomain(r *order.ReturnRequest) *ReturnRequestModel {
	m := &ReturnRequestModel{
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		Reason:     r.Reason,
		Status:     string(r.Status),
		AdminNotes: r.AdminNotes,
		ReviewedAt: r.ReviewedAt,
		Items:      make([]ReturnItemModel, len(r.Items)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, item := range r.Items {
		m.Items[i] = ReturnItemModel{
			ID:          item.ID,
			ReturnID:    r.ID,
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
		}
	}
	return m
}

// ReturnItemModel is a returned quantity of one order line
type ReturnItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ReturnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID `gorm:"type:uuid;not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductName string    `gorm:"type:varchar(200);not null"`
	Size        string    `gorm:"type:varchar(20)"`
	Quantity    int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}
