package providers

import "context"

// RateSource is the market-data boundary the conversion core consumes. It is
// invoked with normalized upper-case 3-letter codes and never for from == to.
// Implementations must map network failures, malformed quotes and internal
// panics to apperrors.ErrProvider rather than leaking their own error types.
type RateSource interface {
	FetchRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (float64, error)
}
