package order

import "time"

// Action is an affordance the storefront may offer for an order
type Action string

const (
	ActionCancel             Action = "cancel"
	ActionUploadPaymentProof Action = "upload_payment_proof"
	ActionConfirmReceived    Action = "confirm_received"
	ActionRequestReturn      Action = "request_return"
	ActionRate               Action = "rate"
)

// AvailableActions derives which customer actions are valid right now.
// allRated tells whether every product of the order already has a rating.
func (o *Order) AvailableActions(now time.Time, policy Policy, allRated bool) []Action {
	actions := make([]Action, 0, 3)
	if o.Status.IsCancellable() {
		actions = append(actions, ActionCancel)
	}
	if o.PaymentMethod == PaymentMethodBankTransfer &&
		(o.Status == StatusUnpaid || o.Status == StatusAwaitingPaymentConfirmation) {
		actions = append(actions, ActionUploadPaymentProof)
	}
	if o.Status == StatusArrived {
		actions = append(actions, ActionConfirmReceived)
		if policy.ReturnWindowOpen(o, now) {
			actions = append(actions, ActionRequestReturn)
		}
	}
	if o.Status == StatusCompleted && !allRated {
		actions = append(actions, ActionRate)
	}
	return actions
}

// Can reports whether action is currently available
func (o *Order) Can(action Action, now time.Time, policy Policy, allRated bool) bool {
	for _, a := range o.AvailableActions(now, policy, allRated) {
		if a == action {
			return true
		}
	}
	return false
}
