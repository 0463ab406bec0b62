package order

import (
	"fmt"
	"strings"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodBankTransfer
}

// String returns the string representation of the payment method
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod parses a payment method code, case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

// InitialStatus returns the status a freshly placed order starts in.
// Cash on delivery skips the payment proof step.
func (m PaymentMethod) InitialStatus() Status {
	if m == PaymentMethodCOD {
		return StatusConfirmed
	}
	return StatusUnpaid
}

// VirtualAccountDigits is the length of the sequence part of a virtual account
const VirtualAccountDigits = 11

// FormatVirtualAccount joins the bank prefix and a numeric sequence into a VA number
func FormatVirtualAccount(prefix string, sequence int64) string {
	return fmt.Sprintf("%s%0*d", prefix, VirtualAccountDigits, sequence)
}
