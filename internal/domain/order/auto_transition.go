package order

import "time"

// Default lifecycle windows
const (
	DefaultReturnWindow      = 12 * time.Hour
	DefaultAutoCompleteAfter = 24 * time.Hour
)

// Policy holds the time windows that drive automatic transitions
type Policy struct {
	// ReturnWindow is how long after arrival a return may be requested
	ReturnWindow time.Duration
	// AutoCompleteAfter is how long after arrival an unconfirmed order completes
	AutoCompleteAfter time.Duration
}

// DefaultPolicy returns the storefront's standard windows
func DefaultPolicy() Policy {
	return Policy{
		ReturnWindow:      DefaultReturnWindow,
		AutoCompleteAfter: DefaultAutoCompleteAfter,
	}
}

// ReturnWindowOpen reports whether now is strictly inside the return window
func (p Policy) ReturnWindowOpen(o *Order, now time.Time) bool {
	if o.Status != StatusArrived || o.ArrivedAt == nil {
		return false
	}
	return now.Sub(*o.ArrivedAt) < p.ReturnWindow
}

// ReturnDeadline returns the instant the return window closes
func (p Policy) ReturnDeadline(o *Order) (time.Time, bool) {
	if o.ArrivedAt == nil {
		return time.Time{}, false
	}
	return o.ArrivedAt.Add(p.ReturnWindow), true
}

// ArrivalDue reports whether a shipped order's delivery estimate has elapsed
func (p Policy) ArrivalDue(o *Order, now time.Time) bool {
	if o.Status != StatusShipped {
		return false
	}
	eta, ok := o.EstimatedArrival()
	return ok && !now.Before(eta)
}

// AutoCompleteDue reports whether an arrived order has waited long enough
func (p Policy) AutoCompleteDue(o *Order, now time.Time) bool {
	if o.Status != StatusArrived || o.ArrivedAt == nil {
		return false
	}
	return now.Sub(*o.ArrivedAt) > p.AutoCompleteAfter
}

// Evaluate applies time-driven transitions to a copy of o. The input is never
// modified. When nothing is due it returns o itself and false; applying the
// result again yields no further change.
func (p Policy) Evaluate(o *Order, now time.Time) (*Order, bool) {
	if o == nil || (!p.ArrivalDue(o, now) && !p.AutoCompleteDue(o, now)) {
		return o, false
	}

	next := o.Clone()
	if p.ArrivalDue(next, now) {
		if err := next.MarkArrived(now); err != nil {
			return o, false
		}
	}
	if p.AutoCompleteDue(next, now) {
		if err := next.complete(now); err != nil {
			return o, false
		}
	}
	return next, true
}

// EvaluateAutoTransitions evaluates o with the default policy
func EvaluateAutoTransitions(o *Order, now time.Time) (*Order, bool) {
	return DefaultPolicy().Evaluate(o, now)
}
