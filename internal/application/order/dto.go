package order

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ==================== Checkout DTOs ====================

// CheckoutSource tells where the checked-out lines come from
type CheckoutSource string

const (
	// SourceCartAll checks out every cart line and clears the cart
	SourceCartAll CheckoutSource = "SOURCE_CART_ALL"
	// SourceCartSelection checks out the selected lines and removes only those
	SourceCartSelection CheckoutSource = "SOURCE_CART_SELECTION"
	// SourceDirect is a single "buy now" item; the cart is untouched
	SourceDirect CheckoutSource = "SOURCE_DIRECT"
)

// IsValid reports whether the source is known
func (s CheckoutSource) IsValid() bool {
	switch s {
	case SourceCartAll, SourceCartSelection, SourceDirect:
		return true
	}
	return false
}

// DirectItemInput is the product bought with "buy now"
type DirectItemInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
}

// CheckoutInput carries a checkout request
type CheckoutInput struct {
	CustomerID      uuid.UUID
	Source          CheckoutSource
	SelectedKeys    []string // "<product_id>:<size>", used with SourceCartSelection
	DirectItem      *DirectItemInput
	ShippingMethod  string
	PaymentMethod   string
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	IdempotencyKey  string
}

// ==================== Command DTOs ====================

// StatusUpdateOptions carries the optional data of a status update
type StatusUpdateOptions struct {
	TrackingNumber string
	EstimatedHours int
	Reason         string
}

// ListOrdersFilter narrows order listing
type ListOrdersFilter struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// ReturnItemInput selects a quantity of one order line for return
type ReturnItemInput struct {
	OrderItemID uuid.UUID
	Quantity    int
}

// RequestReturnInput carries a return request
type RequestReturnInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reason     string
	Items      []ReturnItemInput
}

// UploadProofInput carries an uploaded payment proof image
type UploadProofInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	ContentType string
	Size        int64
	Body        io.Reader
}

// RateItemInput is one product rating of an order
type RateItemInput struct {
	ProductID uuid.UUID
	Stars     int
	Review    string
}

// ==================== Response DTOs ====================

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Size         string          `json:"size,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                     uuid.UUID           `json:"id"`
	OrderNumber            string              `json:"order_number"`
	CustomerID             uuid.UUID           `json:"customer_id"`
	Items                  []OrderItemResponse `json:"items"`
	ItemCount              int                 `json:"item_count"`
	Subtotal               decimal.Decimal     `json:"subtotal"`
	ShippingCost           decimal.Decimal     `json:"shipping_cost"`
	Total                  decimal.Decimal     `json:"total"`
	Courier                string              `json:"courier"`
	PaymentMethod          string              `json:"payment_method"`
	VirtualAccount         string              `json:"virtual_account,omitempty"`
	ShippingName           string              `json:"shipping_name"`
	ShippingPhone          string              `json:"shipping_phone"`
	ShippingAddress        string              `json:"shipping_address"`
	Status                 string              `json:"status"`
	StatusLabel            string              `json:"status_label"`
	TrackingNumber         string              `json:"tracking_number,omitempty"`
	EstimatedDeliveryHours *int                `json:"estimated_delivery_hours,omitempty"`
	EstimatedArrival       *time.Time          `json:"estimated_arrival,omitempty"`
	ArrivedAt              *time.Time          `json:"arrived_at,omitempty"`
	ReturnDeadline         *time.Time          `json:"return_deadline,omitempty"`
	CustomerConfirmed      bool                `json:"customer_confirmed"`
	CompletedAt            *time.Time          `json:"completed_at,omitempty"`
	CancelledAt            *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason           string              `json:"cancel_reason,omitempty"`
	AvailableActions       []string            `json:"available_actions"`
	Version                int                 `json:"version"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to a response. Available actions
// are derived at now.
func ToOrderResponse(o *order.Order, now time.Time, policy order.Policy, allRated bool) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Size:         item.Size,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal,
		}
	}

	actions := o.AvailableActions(now, policy, allRated)
	actionNames := make([]string, len(actions))
	for i, a := range actions {
		actionNames[i] = string(a)
	}

	resp := OrderResponse{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber,
		CustomerID:             o.CustomerID,
		Items:                  items,
		ItemCount:              o.ItemCount(),
		Subtotal:               o.Subtotal,
		ShippingCost:           o.ShippingCost,
		Total:                  o.Total,
		Courier:                o.Courier,
		PaymentMethod:          string(o.PaymentMethod),
		VirtualAccount:         o.VirtualAccount,
		ShippingName:           o.ShippingAddress.Name,
		ShippingPhone:          o.ShippingAddress.Phone,
		ShippingAddress:        o.ShippingAddress.Address,
		Status:                 string(o.Status),
		StatusLabel:            o.Status.Label(),
		TrackingNumber:         o.TrackingNumber,
		EstimatedDeliveryHours: o.EstimatedDeliveryHours,
		ArrivedAt:              o.ArrivedAt,
		CustomerConfirmed:      o.CustomerConfirmed,
		CompletedAt:            o.CompletedAt,
		CancelledAt:            o.CancelledAt,
		CancelReason:           o.CancelReason,
		AvailableActions:       actionNames,
		Version:                o.Version,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
	if eta, ok := o.EstimatedArrival(); ok {
		resp.EstimatedArrival = &eta
	}
	if o.Status == order.StatusArrived {
		if deadline, ok := policy.ReturnDeadline(o); ok {
			resp.ReturnDeadline = &deadline
		}
	}
	return resp
}

// ReturnItemResponse represents a returned line
type ReturnItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderItemID uuid.UUID `json:"order_item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Size        string    `json:"size,omitempty"`
	Quantity    int       `json:"quantity"`
}

// ReturnResponse represents a return request in API responses
type ReturnResponse struct {
	ID         uuid.UUID            `json:"id"`
	OrderID    uuid.UUID            `json:"order_id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	Reason     string               `json:"reason"`
	Items      []ReturnItemResponse `json:"items"`
	Status     string               `json:"status"`
	AdminNotes string               `json:"admin_notes,omitempty"`
	ReviewedAt *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// ToReturnResponse converts a return request to a response
func ToReturnResponse(r *order.ReturnRequest) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReturnItemResponse{
			ID:          item.ID,
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
		}
	}
	return ReturnResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		Reason:     r.Reason,
		Items:      items,
		Status:     string(r.Status),
		AdminNotes: r.AdminNotes,
		ReviewedAt: r.ReviewedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// PaymentProofResponse represents a payment proof in API responses
type PaymentProofResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToPaymentProofResponse converts a payment proof to a response
func ToPaymentProofResponse(p *order.PaymentProof, downloadURL string) PaymentProofResponse {
	return PaymentProofResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		CustomerID:  p.CustomerID,
		ContentType: p.ContentType,
		Size:        p.Size,
		Status:      string(p.Status),
		AdminNotes:  p.AdminNotes,
		ReviewedAt:  p.ReviewedAt,
		DownloadURL: downloadURL,
		CreatedAt:   p.CreatedAt,
	}
}

// RatingResponse represents a rating in API responses
type RatingResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Stars      int       `json:"stars"`
	Review     string    `json:"review,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToRatingResponse converts a rating to a response
func ToRatingResponse(r *order.Rating) RatingResponse {
	return RatingResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		ProductID:  r.ProductID,
		Stars:      r.Stars,
		Review:     r.Review,
		CreatedAt:  r.CreatedAt,
	}
}

// RatingSummaryResponse is the average star value of a product
type RatingSummaryResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Average   float64   `json:"average"`
	Count     int64     `json:"count"`
}

// ShippingOptionResponse represents a courier choice
type ShippingOptionResponse struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
	CostText       string          `json:"cost_text"`
	ETA            string          `json:"eta"`
	EstimatedHours int             `json:"estimated_hours"`
}

// ListShippingOptions returns the fixed courier choices
func ListShippingOptions() []ShippingOptionResponse {
	opts := order.ShippingOptions()
	resp := make([]ShippingOptionResponse, len(opts))
	for i, opt := range opts {
		resp[i] = ShippingOptionResponse{
			Code:           opt.Code,
			Name:           opt.Name,
			Cost:           opt.Cost,
			CostText:       FormatRupiah(opt.Cost),
			ETA:            opt.ETA,
			EstimatedHours: opt.EstimatedHours,
		}
	}
	return resp
}

// PaymentInstructionsResponse tells the customer how to pay a bank transfer order
type PaymentInstructionsResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	PaymentMethod  string          `json:"payment_method"`
	VirtualAccount string          `json:"virtual_account,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	AmountText     string          `json:"amount_text"`
	Status         string          `json:"status"`
	Steps          []string        `json:"steps"`
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way Indonesian shoppers read it, e.g. "Rp270.000"
func FormatRupiah(amount decimal.Decimal) string {
	return rupiahPrinter.Sprintf("Rp%d", amount.Round(0).IntPart())
}
