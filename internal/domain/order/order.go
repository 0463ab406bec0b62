package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Item is an immutable line of a placed order. Product name and image are
// snapshots taken at checkout.
type Item struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductImage string
	Size         string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
}

// NewItem creates an order line and computes its line total
func NewItem(productID uuid.UUID, productName, productImage, size string, quantity int, unitPrice decimal.Decimal) (Item, error) {
	if productID == uuid.Nil {
		return Item{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return Item{}, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return Item{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Item{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return Item{
		ID:           uuid.New(),
		ProductID:    productID,
		ProductName:  productName,
		ProductImage: productImage,
		Size:         size,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineTotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Order is the aggregate root of the storefront order lifecycle
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber            string
	CustomerID             uuid.UUID
	Items                  []Item
	Subtotal               decimal.Decimal
	ShippingCost           decimal.Decimal
	Total                  decimal.Decimal
	Courier                string
	PaymentMethod          PaymentMethod
	VirtualAccount         string
	ShippingAddress        ShippingAddress
	Status                 Status
	TrackingNumber         string
	EstimatedDeliveryHours *int
	ArrivedAt              *time.Time
	CustomerConfirmed      bool
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	CancelReason           string
}

// NewOrderParams carries everything needed to place an order
type NewOrderParams struct {
	CustomerID     uuid.UUID
	OrderNumber    string
	Items          []Item
	Shipping       ShippingOption
	PaymentMethod  PaymentMethod
	Address        ShippingAddress
	VirtualAccount string
	Now            time.Time
}

// NewOrder places a new order. Totals are fixed here and never recomputed.
func NewOrder(p NewOrderParams) (*Order, error) {
	if p.CustomerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if len(p.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if p.Address.Name == "" || p.Address.Phone == "" || p.Address.Address == "" {
		return nil, ErrIncompleteShippingInfo
	}
	if p.Shipping.Code == "" {
		return nil, ErrInvalidShippingMethod
	}
	if !p.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	if strings.TrimSpace(p.OrderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if p.PaymentMethod == PaymentMethodBankTransfer && p.VirtualAccount == "" {
		return nil, shared.NewDomainError("INVALID_VIRTUAL_ACCOUNT", "Bank transfer orders need a virtual account")
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       p.OrderNumber,
		CustomerID:        p.CustomerID,
		Courier:           p.Shipping.Code,
		ShippingCost:      p.Shipping.Cost,
		PaymentMethod:     p.PaymentMethod,
		ShippingAddress:   p.Address,
		Status:            p.PaymentMethod.InitialStatus(),
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if p.PaymentMethod == PaymentMethodBankTransfer {
		o.VirtualAccount = p.VirtualAccount
	}

	subtotal := decimal.Zero
	o.Items = make([]Item, len(p.Items))
	for i, item := range p.Items {
		item.OrderID = o.ID
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		o.Items[i] = item
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingCost)

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// EnsureOwnedBy rejects actions by anyone but the customer who placed the order
func (o *Order) EnsureOwnedBy(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if o.CustomerID != customerID {
		return ErrNotAuthorized
	}
	return nil
}

// ItemCount returns the total number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// FindItem returns the order line with the given ID
func (o *Order) FindItem(itemID uuid.UUID) (Item, bool) {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// HasProduct reports whether any line of the order is for the product
func (o *Order) HasProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// EstimatedArrival returns when the courier is expected to deliver, if known
func (o *Order) EstimatedArrival() (time.Time, bool) {
	if o.EstimatedDeliveryHours == nil {
		return time.Time{}, false
	}
	return o.CreatedAt.Add(time.Duration(*o.EstimatedDeliveryHours) * time.Hour), true
}

func (o *Order) moveTo(target Status, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return invalidTransition(o.Status, target)
	}
	from := o.Status
	o.Status = target
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, now))
	return nil
}

// MarkPaymentSubmitted moves an unpaid bank-transfer order to awaiting
// confirmation. Calling it again while awaiting is a no-op.
func (o *Order) MarkPaymentSubmitted(now time.Time) error {
	if o.PaymentMethod != PaymentMethodBankTransfer {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Cash on delivery orders do not take a payment proof")
	}
	switch o.Status {
	case StatusAwaitingPaymentConfirmation:
		return nil
	case StatusUnpaid:
		return o.moveTo(StatusAwaitingPaymentConfirmation, now)
	}
	return invalidTransition(o.Status, StatusAwaitingPaymentConfirmation)
}

// ConfirmPayment is the staff action accepting a bank transfer
func (o *Order) ConfirmPayment(now time.Time) error {
	if o.Status != StatusAwaitingPaymentConfirmation {
		return invalidTransition(o.Status, StatusConfirmed)
	}
	return o.moveTo(StatusConfirmed, now)
}

// Pack is the staff action marking the parcel as packed
func (o *Order) Pack(now time.Time) error {
	return o.moveTo(StatusPacked, now)
}

// Ship hands the parcel to the courier. The tracking number can only be set
// here. estimatedHours <= 0 falls back to the courier's default estimate.
func (o *Order) Ship(trackingNumber string, estimatedHours int, now time.Time) error {
	if err := o.moveTo(StatusShipped, now); err != nil {
		return err
	}
	o.TrackingNumber = strings.TrimSpace(trackingNumber)
	if estimatedHours <= 0 {
		if opt, err := LookupShippingOption(o.Courier); err == nil {
			estimatedHours = opt.EstimatedHours
		}
	}
	if estimatedHours > 0 {
		hours := estimatedHours
		o.EstimatedDeliveryHours = &hours
	}
	return nil
}

// MarkArrived records delivery. arrived_at is stamped once and never cleared.
func (o *Order) MarkArrived(now time.Time) error {
	if err := o.moveTo(StatusArrived, now); err != nil {
		return err
	}
	if o.ArrivedAt == nil {
		arrived := now
		o.ArrivedAt = &arrived
	}
	return nil
}

// ConfirmReceived is the customer acknowledging delivery
func (o *Order) ConfirmReceived(customerID uuid.UUID, now time.Time) error {
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return err
	}
	if err := o.complete(now); err != nil {
		return err
	}
	o.CustomerConfirmed = true
	return nil
}

// AutoComplete completes an arrived order the customer never confirmed
func (o *Order) AutoComplete(now time.Time, policy Policy) error {
	if o.Status != StatusArrived {
		return invalidTransition(o.Status, StatusCompleted)
	}
	if !policy.AutoCompleteDue(o, now) {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Order is still within the confirmation period")
	}
	return o.complete(now)
}

func (o *Order) complete(now time.Time) error {
	if err := o.moveTo(StatusCompleted, now); err != nil {
		return err
	}
	completed := now
	o.CompletedAt = &completed
	return nil
}

// StartReturn moves an arrived order into the return flow while the return
// window is still open
func (o *Order) StartReturn(now time.Time, policy Policy) error {
	if o.Status != StatusArrived {
		return invalidTransition(o.Status, StatusReturnInProgress)
	}
	if !policy.ReturnWindowOpen(o, now) {
		return ErrWindowExpired
	}
	return o.moveTo(StatusReturnInProgress, now)
}

// Cancel is the customer cancelling before shipment. It is irreversible.
func (o *Order) Cancel(customerID uuid.UUID, reason string, now time.Time) error {
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return err
	}
	return o.cancel(reason, now)
}

func (o *Order) cancel(reason string, now time.Time) error {
	if !o.Status.IsCancellable() {
		return invalidTransition(o.Status, StatusCancelled)
	}
	if err := o.moveTo(StatusCancelled, now); err != nil {
		return err
	}
	cancelled := now
	o.CancelledAt = &cancelled
	o.CancelReason = strings.TrimSpace(reason)
	return nil
}

// TransitionTo is the generic staff transition. It validates the edge and
// dispatches to the specific action so every invariant still applies.
func (o *Order) TransitionTo(target Status, now time.Time, policy Policy) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+target.String())
	}
	if !o.Status.CanTransitionTo(target) {
		return invalidTransition(o.Status, target)
	}
	switch target {
	case StatusAwaitingPaymentConfirmation:
		return o.MarkPaymentSubmitted(now)
	case StatusConfirmed:
		return o.ConfirmPayment(now)
	case StatusPacked:
		return o.Pack(now)
	case StatusShipped:
		return o.Ship(o.TrackingNumber, 0, now)
	case StatusArrived:
		return o.MarkArrived(now)
	case StatusCompleted:
		return o.complete(now)
	case StatusReturnInProgress:
		return o.StartReturn(now, policy)
	case StatusCancelled:
		return o.cancel("cancelled by staff", now)
	}
	return invalidTransition(o.Status, target)
}

// Clone returns a deep copy of the order without pending domain events
func (o *Order) Clone() *Order {
	c := *o
	c.BaseAggregateRoot = shared.BaseAggregateRoot{BaseEntity: o.BaseEntity, Version: o.Version}
	c.Items = append([]Item(nil), o.Items...)
	if o.EstimatedDeliveryHours != nil {
		h := *o.EstimatedDeliveryHours
		c.EstimatedDeliveryHours = &h
	}
	c.ArrivedAt = cloneTime(o.ArrivedAt)
	c.CompletedAt = cloneTime(o.CompletedAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
