package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemInput adds units of a product to the cart
type AddItemInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
}

// CartItemResponse is one cart line priced at the current catalog price
type CartItemResponse struct {
	Key         string          `json:"key"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	ImageURL    string          `json:"image_url,omitempty"`
	Size        string          `json:"size"`
	Sizes       []string        `json:"sizes,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Selected    bool            `json:"selected"`
	Available   bool            `json:"available"`
}

// CartResponse is the customer's cart with totals
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	ItemCount     int                `json:"item_count"`
	SelectedCount int                `json:"selected_count"`
	Total         decimal.Decimal    `json:"total"`
	SelectedTotal decimal.Decimal    `json:"selected_total"`
}
