package order

import "github.com/tungtungsport/storefront/internal/domain/shared"

// Order lifecycle errors
var (
	ErrOrderNotFound          = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrReturnNotFound         = shared.NewDomainError("NOT_FOUND", "Return request not found")
	ErrProofNotFound          = shared.NewDomainError("NOT_FOUND", "Payment proof not found")
	ErrInvalidTransition      = shared.ErrInvalidTransition
	ErrWindowExpired          = shared.ErrWindowExpired
	ErrNotAuthorized          = shared.ErrNotAuthorized
	ErrEmptyOrder             = shared.ErrEmptyOrder
	ErrIncompleteShippingInfo = shared.ErrIncompleteShippingInfo
	ErrInvalidShippingMethod  = shared.NewDomainError("INVALID_SHIPPING_METHOD", "Unknown shipping method")
	ErrInvalidPaymentMethod   = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be COD or BANK_TRANSFER")
	ErrAlreadyRated           = shared.NewDomainError("ALREADY_RATED", "This product has already been rated for this order")
)

func invalidTransition(from, to Status) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInvalidTransition,
		"Cannot move order from "+from.Label()+" to "+to.Label())
}
