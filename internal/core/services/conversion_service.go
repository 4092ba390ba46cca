package services

import (
	"context"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ConversionService converts smallest-unit amounts between currencies and
// serves memoized converted display values for entities. All arithmetic runs
// on decimals so differing minor-unit multipliers introduce no binary-float
// rounding drift; amounts enter and leave as int64 smallest units.
type ConversionService struct {
	rates      portssvc.ExchangeRateReaderSvc
	valueCache *EntityValueCache
	walletRepo portsrepo.WalletRepository
}

// NewConversionService creates a ConversionService. walletRepo may be nil when
// the converted-value read path is not needed (e.g. batch-only callers).
func NewConversionService(
	rates portssvc.ExchangeRateReaderSvc,
	valueCache *EntityValueCache,
	walletRepo portsrepo.WalletRepository,
) *ConversionService {
	return &ConversionService{
		rates:      rates,
		valueCache: valueCache,
		walletRepo: walletRepo,
	}
}

// GetRate exposes the underlying rate chain, so callers needing the raw rate
// (handlers, migration retries) share one resolution path.
func (s *ConversionService) GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	return s.rates.GetRate(ctx, fromCode, toCode)
}

// Convert converts one smallest-unit amount from one currency to another.
func (s *ConversionService) Convert(ctx context.Context, amount int64, fromCode, toCode string) (int64, error) {
	fromCode = domain.NormalizeCurrencyCode(fromCode)
	toCode = domain.NormalizeCurrencyCode(toCode)
	if fromCode == toCode {
		return amount, nil
	}

	rate, err := s.rates.GetRate(ctx, fromCode, toCode)
	if err != nil {
		return 0, err
	}
	return convertWithRate(amount, fromCode, toCode, rate.Rate), nil
}

// ConvertBatch converts every amount with a single rate resolution for the
// pair. Any rate failure aborts the whole batch; a 1:1 fallback would silently
// corrupt every amount in it.
func (s *ConversionService) ConvertBatch(ctx context.Context, amounts []int64, fromCode, toCode string) ([]int64, error) {
	fromCode = domain.NormalizeCurrencyCode(fromCode)
	toCode = domain.NormalizeCurrencyCode(toCode)

	converted := make([]int64, len(amounts))
	if fromCode == toCode {
		copy(converted, amounts)
		return converted, nil
	}

	rate, err := s.rates.GetRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	for i, amount := range amounts {
		converted[i] = convertWithRate(amount, fromCode, toCode, rate.Rate)
	}
	return converted, nil
}

// GetWalletValue returns a wallet's balance converted to the target currency,
// cache-aside through the entity value cache.
func (s *ConversionService) GetWalletValue(ctx context.Context, userID, walletID, currencyCode string) (int64, error) {
	if !domain.IsValidCurrencyCode(currencyCode) {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, currencyCode)
	}
	currencyCode = domain.NormalizeCurrencyCode(currencyCode)

	if value, ok := s.valueCache.Get(userID, domain.EntityTypeWallet, walletID, currencyCode); ok {
		return value, nil
	}

	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return 0, err
	}
	if wallet.UserID != userID {
		// Do not reveal other users' wallet ids.
		return 0, fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, walletID)
	}

	value, err := s.Convert(ctx, wallet.Balance, wallet.CurrencyCode, currencyCode)
	if err != nil {
		return 0, err
	}

	s.valueCache.Set(userID, domain.EntityTypeWallet, walletID, currencyCode, value)
	return value, nil
}

// convertWithRate applies the conversion algorithm:
// smallest units -> major units of the source currency (exact decimal divide
// by a power of ten), multiply by the rate, scale to the target currency's
// smallest units and round half away from zero. Signs pass through untouched.
func convertWithRate(amount int64, fromCode, toCode string, rate decimal.Decimal) int64 {
	majorAmount := decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(domain.MinorUnitMultiplier(fromCode)))
	convertedMajor := majorAmount.Mul(rate)
	return convertedMajor.
		Mul(decimal.NewFromInt(domain.MinorUnitMultiplier(toCode))).
		Round(0).
		IntPart()
}
