package order

// Status represents the lifecycle status of a storefront order
type Status string

const (
	StatusUnpaid                      Status = "UNPAID"
	StatusAwaitingPaymentConfirmation Status = "AWAITING_PAYMENT_CONFIRMATION"
	StatusConfirmed                   Status = "CONFIRMED"
	StatusPacked                      Status = "PACKED"
	StatusShipped                     Status = "SHIPPED"
	StatusArrived                     Status = "ARRIVED"
	StatusCompleted                   Status = "COMPLETED"
	StatusReturnInProgress            Status = "RETURN_IN_PROGRESS"
	StatusCancelled                   Status = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusUnpaid,
		StatusAwaitingPaymentConfirmation,
		StatusConfirmed,
		StatusPacked,
		StatusShipped,
		StatusArrived,
		StatusCompleted,
		StatusReturnInProgress,
		StatusCancelled,
	}
}

// IsValid checks if the status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusAwaitingPaymentConfirmation, StatusConfirmed, StatusPacked,
		StatusShipped, StatusArrived, StatusCompleted, StatusReturnInProgress, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Label returns the customer-facing (Indonesian) label shown in order tracking
func (s Status) Label() string {
	switch s {
	case StatusUnpaid:
		return "Belum Dibayar"
	case StatusAwaitingPaymentConfirmation:
		return "Menunggu Konfirmasi"
	case StatusConfirmed:
		return "Dikonfirmasi"
	case StatusPacked:
		return "Dikemas"
	case StatusShipped:
		return "Dalam Pengiriman"
	case StatusArrived:
		return "Telah Tiba"
	case StatusCompleted:
		return "Selesai"
	case StatusReturnInProgress:
		return "Pengembalian"
	case StatusCancelled:
		return "Dibatalkan"
	}
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(s.NextStatuses()) == 0
}

// IsCancellable reports whether the order has not shipped yet
func (s Status) IsCancellable() bool {
	switch s {
	case StatusUnpaid, StatusAwaitingPaymentConfirmation, StatusConfirmed, StatusPacked:
		return true
	}
	return false
}

// NextStatuses returns the statuses reachable in one step
func (s Status) NextStatuses() []Status {
	switch s {
	case StatusUnpaid:
		return []Status{StatusAwaitingPaymentConfirmation, StatusCancelled}
	case StatusAwaitingPaymentConfirmation:
		return []Status{StatusConfirmed, StatusCancelled}
	case StatusConfirmed:
		return []Status{StatusPacked, StatusCancelled}
	case StatusPacked:
		return []Status{StatusShipped, StatusCancelled}
	case StatusShipped:
		return []Status{StatusArrived}
	case StatusArrived:
		return []Status{StatusCompleted, StatusReturnInProgress}
	}
	return nil
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range s.NextStatuses() {
		if next == target {
			return true
		}
	}
	return false
}
