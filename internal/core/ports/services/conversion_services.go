package services

import (
	"context"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// ExchangeRateReaderSvc defines read access to market exchange rates.
type ExchangeRateReaderSvc interface {
	// GetRate resolves the current rate for a currency pair through the
	// cache -> source -> validator chain. Same-currency pairs return an
	// identity rate without touching the provider.
	GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
}

// ConverterSvc converts smallest-unit integer amounts between currencies.
type ConverterSvc interface {
	// Convert converts a single amount. Sign is preserved; same-currency
	// conversions return the amount unchanged without a rate lookup.
	Convert(ctx context.Context, amount int64, fromCode, toCode string) (int64, error)

	// ConvertBatch converts many amounts sharing one currency pair with a
	// single rate resolution. A rate failure aborts the whole batch.
	ConvertBatch(ctx context.Context, amounts []int64, fromCode, toCode string) ([]int64, error)
}

// WalletValueReaderSvc computes converted display values for wallets,
// memoized in the entity value cache.
type WalletValueReaderSvc interface {
	GetWalletValue(ctx context.Context, userID, walletID, currencyCode string) (int64, error)
}

// ConversionSvcFacade combines all conversion-related service interfaces.
type ConversionSvcFacade interface {
	ExchangeRateReaderSvc
	ConverterSvc
	WalletValueReaderSvc
}
