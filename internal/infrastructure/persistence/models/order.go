package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root
type OrderModel struct {
	AggregateModel
	OrderNumber            string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	Items                  []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal               decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ShippingCost           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Total                  decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Courier                string           `gorm:"type:varchar(20);not null"`
	PaymentMethod          string           `gorm:"type:varchar(20);not null"`
	VirtualAccount         string           `gorm:"type:varchar(30)"`
	ShippingAddress        string           `gorm:"type:text;not null"`
	Status                 string           `gorm:"type:varchar(40);not null;index"`
	TrackingNumber         string           `gorm:"type:varchar(50)"`
	EstimatedDeliveryHours *int
	// EstimatedArrivalAt is derived from created_at and the estimate so the
	// auto transition sweep can filter in SQL
	EstimatedArrivalAt *time.Time `gorm:"index"`
	ArrivedAt          *time.Time `gorm:"index"`
	CustomerConfirmed  bool       `gorm:"not null;default:false"`
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot:      m.ToAggregateRoot(),
		OrderNumber:            m.OrderNumber,
		CustomerID:             m.CustomerID,
		Subtotal:               m.Subtotal,
		ShippingCost:           m.ShippingCost,
		Total:                  m.Total,
		Courier:                m.Courier,
		PaymentMethod:          order.PaymentMethod(m.PaymentMethod),
		VirtualAccount:         m.VirtualAccount,
		ShippingAddress:        order.ParseShippingAddress(m.ShippingAddress),
		Status:                 order.Status(m.Status),
		TrackingNumber:         m.TrackingNumber,
		EstimatedDeliveryHours: m.EstimatedDeliveryHours,
		ArrivedAt:              m.ArrivedAt,
		CustomerConfirmed:      m.CustomerConfirmed,
		CompletedAt:            m.CompletedAt,
		CancelledAt:            m.CancelledAt,
		CancelReason:           m.CancelReason,
		Items:                  make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.Subtotal = o.Subtotal
	m.ShippingCost = o.ShippingCost
	m.Total = o.Total
	m.Courier = o.Courier
	m.PaymentMethod = string(o.PaymentMethod)
	m.VirtualAccount = o.VirtualAccount
	m.ShippingAddress = o.ShippingAddress.String()
	m.Status = string(o.Status)
	m.TrackingNumber = o.TrackingNumber
	m.EstimatedDeliveryHours = o.EstimatedDeliveryHours
	m.EstimatedArrivalAt = nil
	if eta, ok := o.EstimatedArrival(); ok {
		m.EstimatedArrivalAt = &eta
	}
	m.ArrivedAt = o.ArrivedAt
	m.CustomerConfirmed = o.CustomerConfirmed
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(o.ID, o.Items[i])
		m.Items[i].Position = i
	}
}

// OrderFromDomain creates a new persistence model from a domain Order
func OrderFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	ProductImage string          `gorm:"type:varchar(500)"`
	Size         string          `gorm:"type:varchar(20)"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position     int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:           m.ID,
		OrderID:      m.OrderID,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		ProductImage: m.ProductImage,
		Size:         m.Size,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		LineTotal:    m.LineTotal,
	}
}

// FromDomain populates the persistence model from a domain Item
func (m *OrderItemModel) FromDomain(orderID uuid.UUID, item order.Item) {
	m.ID = item.ID
	m.OrderID = orderID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.ProductImage = item.ProductImage
	m.Size = item.Size
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.LineTotal = item.LineTotal
}

// SequenceModel backs named counters such as the daily order number and the
// virtual account sequence
type SequenceModel struct {
	Name  string `gorm:"type:varchar(50);primary_key"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}
