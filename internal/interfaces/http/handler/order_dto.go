package handler

// =====================
// Checkout Request DTOs
// =====================

// CheckoutRequest places an order from the cart or a single "buy now" item.
// Blank shipping fields are filled from the customer's profile.
type CheckoutRequest struct {
	Source          string             `json:"source" binding:"omitempty,oneof=SOURCE_CART_ALL SOURCE_CART_SELECTION SOURCE_DIRECT"`
	SelectedKeys    []string           `json:"selected_keys"`
	DirectItem      *DirectItemRequest `json:"direct_item"`
	ShippingMethod  string             `json:"shipping_method" binding:"required"`
	PaymentMethod   string             `json:"payment_method" binding:"required"`
	ShippingName    string             `json:"shipping_name" binding:"omitempty,max=200"`
	ShippingPhone   string             `json:"shipping_phone" binding:"omitempty,max=30,phone_id"`
	ShippingAddress string             `json:"shipping_address" binding:"omitempty,max=500"`
}

// DirectItemRequest is the product bought with "buy now"
type DirectItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Size      string `json:"size" binding:"omitempty,max=20"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
}

// =====================
// Order Request DTOs
// =====================

// ListOrdersQuery filters order listings
type ListOrdersQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,max=40"`
	Search   string `form:"search" binding:"omitempty,max=50"`
}

// CancelOrderRequest carries the optional cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// UpdateOrderStatusRequest moves an order to another status
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
	EstimatedHours int    `json:"estimated_hours" binding:"omitempty,min=1,max=2160"`
	Reason         string `json:"reason" binding:"omitempty,max=500"`
}

// =====================
// Return and Rating DTOs
// =====================

// ReturnItemRequest selects a quantity of one order line
type ReturnItemRequest struct {
	OrderItemID string `json:"order_item_id" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// RequestReturnRequest asks to return items of an arrived order
type RequestReturnRequest struct {
	Reason string              `json:"reason" binding:"required,max=1000"`
	Items  []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RateItemRequest rates one product of the order
type RateItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Stars     int    `json:"stars" binding:"required,min=1,max=5"`
	Review    string `json:"review" binding:"omitempty,max=2000"`
}

// RateOrderRequest rates products of a completed order
type RateOrderRequest struct {
	Items []RateItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReviewNotesRequest carries staff notes for a review decision
type ReviewNotesRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}
