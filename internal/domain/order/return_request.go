package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// ReturnStatus is the review status of a return request
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
)

// IsValid checks if the return status is a valid value
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of the return status
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the return status can move to target
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return target == ReturnStatusApproved || target == ReturnStatusRejected
	case ReturnStatusApproved:
		return target == ReturnStatusCompleted
	}
	return false
}

// ReturnSelection is the customer's pick of an order line to send back
type ReturnSelection struct {
	OrderItemID uuid.UUID
	Quantity    int
}

// ReturnItem is a returned quantity of one order line
type ReturnItem struct {
	ID          uuid.UUID
	ReturnID    uuid.UUID
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Size        string
	Quantity    int
}

// ReturnRequest tracks a customer's return of an arrived order. The order
// itself stays in RETURN_IN_PROGRESS; the outcome lives here.
type ReturnRequest struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reason     string
	Items      []ReturnItem
	Status     ReturnStatus
	AdminNotes string
	ReviewedAt *time.Time
}

// RequestReturn files a return for the selected lines and moves the order into
// the return flow. The request is only possible while the order has arrived
// and the return window is open.
func (o *Order) RequestReturn(customerID uuid.UUID, reason string, selections []ReturnSelection, now time.Time, policy Policy) (*ReturnRequest, error) {
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return nil, err
	}
	if o.Status != StatusArrived {
		return nil, invalidTransition(o.Status, StatusReturnInProgress)
	}
	if !policy.ReturnWindowOpen(o, now) {
		return nil, ErrWindowExpired
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Return reason is required")
	}
	if len(selections) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Select at least one item to return")
	}

	r := &ReturnRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           o.ID,
		CustomerID:        o.CustomerID,
		Reason:            reason,
		Status:            ReturnStatusPending,
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	seen := make(map[uuid.UUID]bool, len(selections))
	for _, sel := range selections {
		item, ok := o.FindItem(sel.OrderItemID)
		if !ok {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Selected item does not belong to this order")
		}
		if seen[sel.OrderItemID] {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Each item can only be selected once")
		}
		seen[sel.OrderItemID] = true
		if sel.Quantity < 1 || sel.Quantity > item.Quantity {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Return quantity must be between 1 and the ordered quantity")
		}
		r.Items = append(r.Items, ReturnItem{
			ID:          uuid.New(),
			ReturnID:    r.ID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    sel.Quantity,
		})
	}

	if err := o.StartReturn(now, policy); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewReturnRequestedEvent(r))
	return r, nil
}

// Approve accepts the return
func (r *ReturnRequest) Approve(notes string, now time.Time) error {
	return r.review(ReturnStatusApproved, notes, now)
}

// Reject declines the return. A note explaining why is required.
func (r *ReturnRequest) Reject(notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Rejection notes are required")
	}
	return r.review(ReturnStatusRejected, notes, now)
}

// Complete marks an approved return as received back
func (r *ReturnRequest) Complete(now time.Time) error {
	return r.review(ReturnStatusCompleted, r.AdminNotes, now)
}

func (r *ReturnRequest) review(target ReturnStatus, notes string, now time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			"Cannot move return request from "+r.Status.String()+" to "+target.String())
	}
	r.Status = target
	r.AdminNotes = strings.TrimSpace(notes)
	reviewed := now
	r.ReviewedAt = &reviewed
	r.UpdatedAt = now
	return nil
}

// TotalQuantity returns the number of units being returned
func (r *ReturnRequest) TotalQuantity() int {
	n := 0
	for _, item := range r.Items {
		n += item.Quantity
	}
	return n
}
