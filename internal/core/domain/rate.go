package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the multiplier converting one unit of FromCurrencyCode into
// units of ToCurrencyCode at the moment it was observed. Same-currency pairs are
// never stored; callers treat them as an identity rate.
type ExchangeRate struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ObservedAt       time.Time       `json:"observedAt"`
}

// RateRange bounds the plausible values of a rate for one currency pair. It is
// used only for validation and is never stored alongside a rate.
type RateRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains reports whether rate lies within [Min, Max].
func (r RateRange) Contains(rate decimal.Decimal) bool {
	return rate.GreaterThanOrEqual(r.Min) && rate.LessThanOrEqual(r.Max)
}
