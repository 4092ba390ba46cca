package domain

import "strings"

// minorUnitDigits maps ISO 4217 currency codes to the number of decimal places
// of their minor unit. Codes absent from the table default to 2.
var minorUnitDigits = map[string]int{
	// Zero-decimal currencies
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0,
	"VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	// Three-decimal currencies
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// NormalizeCurrencyCode trims surrounding whitespace and upper-cases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCurrencyCode reports whether code is a well-formed 3-letter ISO 4217 code
// after normalization.
func IsValidCurrencyCode(code string) bool {
	code = NormalizeCurrencyCode(code)
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// MinorUnitDigits returns the number of decimal places of a currency's minor unit.
func MinorUnitDigits(code string) int {
	if digits, ok := minorUnitDigits[NormalizeCurrencyCode(code)]; ok {
		return digits
	}
	return 2
}

// MinorUnitMultiplier returns how many smallest units make up one major unit of the
// currency (1 for VND, 100 for USD, 1000 for BHD). Always a power of ten.
func MinorUnitMultiplier(code string) int64 {
	multiplier := int64(1)
	for i := 0; i < MinorUnitDigits(code); i++ {
		multiplier *= 10
	}
	return multiplier
}

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	AuditFields
}
