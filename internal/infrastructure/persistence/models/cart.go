package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/cart"
)

// CartItemModel is one cart line with its checkout selection flag
type CartItemModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line,priority:1"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line,priority:2"`
	Size       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_line,priority:3"`
	Quantity   int       `gorm:"not null"`
	Selected   bool      `gorm:"not null;default:false"`
	Position   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// CartToDomain rebuilds a cart from its stored lines, ordered by position
func CartToDomain(customerID uuid.UUID, rows []CartItemModel) *cart.Cart {
	lines := make([]cart.Line, 0, len(rows))
	selected := make([]cart.LineKey, 0, len(rows))
	for _, row := range rows {
		key := cart.NewLineKey(row.ProductID, row.Size)
		lines = append(lines, cart.Line{Key: key, Quantity: row.Quantity, AddedAt: row.CreatedAt})
		if row.Selected {
			selected = append(selected, key)
		}
	}
	return cart.Restore(customerID, lines, selected)
}

// CartItemFromLine builds the row for a new cart line
func CartItemFromLine(customerID uuid.UUID, l cart.Line, selected bool, position int, now time.Time) CartItemModel {
	added := l.AddedAt
	if added.IsZero() {
		added = now
	}
	return CartItemModel{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProductID:  l.Key.ProductID,
		Size:       l.Key.Size,
		Quantity:   l.Quantity,
		Selected:   selected,
		Position:   position,
		CreatedAt:  added,
		UpdatedAt:  now,
	}
}
