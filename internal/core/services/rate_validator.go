package services

import (
	"fmt"
	"strings"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateValidator sanity-checks rates coming back from the market-data provider.
// It is stateless apart from its configured plausibility ranges and performs
// no I/O.
type RateValidator struct {
	ranges map[string]domain.RateRange // keyed "FROM:TO"
}

// NewRateValidator creates a RateValidator with optional per-pair plausibility
// ranges. A nil map means no range opinions at all.
func NewRateValidator(ranges map[string]domain.RateRange) *RateValidator {
	if ranges == nil {
		ranges = map[string]domain.RateRange{}
	}
	return &RateValidator{ranges: ranges}
}

// Validate rejects non-positive rates unconditionally and, when a range is
// configured for the pair, rates outside it. A pair without a configured range
// passes on positivity alone.
func (v *RateValidator) Validate(fromCode, toCode string, rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s for %s to %s", apperrors.ErrNonPositiveRate, rate.String(), fromCode, toCode)
	}

	bounds, ok := v.ranges[rangeKey(fromCode, toCode)]
	if !ok {
		return nil
	}
	if !bounds.Contains(rate) {
		return fmt.Errorf("%w: %s for %s to %s not in [%s, %s]",
			apperrors.ErrRateOutOfRange, rate.String(), fromCode, toCode, bounds.Min.String(), bounds.Max.String())
	}
	return nil
}

func rangeKey(fromCode, toCode string) string {
	return fromCode + ":" + toCode
}

// ParseRateRanges parses the configured plausibility ranges from their compact
// env representation, e.g. "USD:VND=20000-30000,EUR:USD=0.8-1.6".
func ParseRateRanges(raw string) (map[string]domain.RateRange, error) {
	ranges := map[string]domain.RateRange{}
	if strings.TrimSpace(raw) == "" {
		return ranges, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		pair, bounds, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: rate range entry %q missing '='", apperrors.ErrValidation, entry)
		}
		fromCode, toCode, ok := strings.Cut(pair, ":")
		if !ok || !domain.IsValidCurrencyCode(fromCode) || !domain.IsValidCurrencyCode(toCode) {
			return nil, fmt.Errorf("%w: rate range entry %q has malformed currency pair", apperrors.ErrValidation, entry)
		}
		minStr, maxStr, ok := strings.Cut(bounds, "-")
		if !ok {
			return nil, fmt.Errorf("%w: rate range entry %q missing '-'", apperrors.ErrValidation, entry)
		}
		minRate, err := decimal.NewFromString(strings.TrimSpace(minStr))
		if err != nil {
			return nil, fmt.Errorf("%w: rate range entry %q has invalid minimum: %v", apperrors.ErrValidation, entry, err)
		}
		maxRate, err := decimal.NewFromString(strings.TrimSpace(maxStr))
		if err != nil {
			return nil, fmt.Errorf("%w: rate range entry %q has invalid maximum: %v", apperrors.ErrValidation, entry, err)
		}
		if maxRate.LessThan(minRate) {
			return nil, fmt.Errorf("%w: rate range entry %q has max below min", apperrors.ErrValidation, entry)
		}
		key := rangeKey(domain.NormalizeCurrencyCode(fromCode), domain.NormalizeCurrencyCode(toCode))
		ranges[key] = domain.RateRange{Min: minRate, Max: maxRate}
	}
	return ranges, nil
}
