package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingOption is one of the fixed courier services offered at checkout
type ShippingOption struct {
	Code           string
	Name           string
	Cost           decimal.Decimal
	ETA            string
	EstimatedHours int
}

var shippingOptions = []ShippingOption{
	{Code: "JNE", Name: "JNE Reguler", Cost: decimal.NewFromInt(20000), ETA: "2-3 hari", EstimatedHours: 72},
	{Code: "JNT", Name: "J&T Express", Cost: decimal.NewFromInt(25000), ETA: "1-2 hari", EstimatedHours: 48},
	{Code: "SICEPAT", Name: "SiCepat REG", Cost: decimal.NewFromInt(15000), ETA: "3-5 hari", EstimatedHours: 120},
}

// ShippingOptions returns a copy of the available courier services
func ShippingOptions() []ShippingOption {
	out := make([]ShippingOption, len(shippingOptions))
	copy(out, shippingOptions)
	return out
}

// LookupShippingOption finds a courier service by code
func LookupShippingOption(code string) (ShippingOption, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, opt := range shippingOptions {
		if opt.Code == code {
			return opt, nil
		}
	}
	return ShippingOption{}, ErrInvalidShippingMethod
}

// addressDelimiter separates the parts of a stored shipping address
const addressDelimiter = " | "

// ShippingAddress is the recipient of an order
type ShippingAddress struct {
	Name    string
	Phone   string
	Address string
}

// NewShippingAddress trims and validates the recipient fields
func NewShippingAddress(name, phone, address string) (ShippingAddress, error) {
	a := ShippingAddress{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
	}
	if a.Name == "" || a.Phone == "" || a.Address == "" {
		return ShippingAddress{}, ErrIncompleteShippingInfo
	}
	return a, nil
}

// String composes the single-line form stored on the order
func (a ShippingAddress) String() string {
	return a.Name + addressDelimiter + a.Phone + addressDelimiter + a.Address
}

// ParseShippingAddress splits a stored address back into its parts.
// Addresses that were not composed by String end up entirely in Address.
func ParseShippingAddress(s string) ShippingAddress {
	parts := strings.SplitN(s, addressDelimiter, 3)
	if len(parts) != 3 {
		return ShippingAddress{Address: s}
	}
	return ShippingAddress{Name: parts[0], Phone: parts[1], Address: parts[2]}
}
