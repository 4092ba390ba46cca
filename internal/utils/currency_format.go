package utils

import (
	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatMinorUnits renders a smallest-unit amount as a major-unit string with
// the currency's precision.
// Example: 12345 with USD (2 decimals) returns "123.45"
// Example: 12345 with VND (0 decimals) returns "12345"
// Example: 12345 with BHD (3 decimals) returns "12.345"
func FormatMinorUnits(amount int64, currencyCode string) string {
	digits := domain.MinorUnitDigits(currencyCode)
	return decimal.New(amount, -int32(digits)).StringFixed(int32(digits))
}
