package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"total":        true,
	"arrived_at":   true,
}

// ReturnSortFields contains allowed sort fields for return requests
var ReturnSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"reviewed_at": true,
}

// PaymentProofSortFields contains allowed sort fields for payment proofs
var PaymentProofSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"reviewed_at": true,
}

// RatingSortFields contains allowed sort fields for ratings
var RatingSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"stars":      true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"brand":      true,
	"price":      true,
}
