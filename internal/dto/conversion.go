package dto

import (
	"time"

	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/finwise/finwise_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// ConvertRequest defines the structure for a one-off amount conversion.
// Amount is in the smallest unit of the source currency and may be zero or
// negative.
type ConvertRequest struct {
	Amount           int64  `json:"amount"`
	FromCurrencyCode string `json:"fromCurrencyCode" binding:"required,currency"`
	ToCurrencyCode   string `json:"toCurrencyCode" binding:"required,currency"`
}

// ConvertResponse echoes the request pair alongside the converted amount in
// the smallest unit of the target currency.
type ConvertResponse struct {
	Amount           int64  `json:"amount"`
	FromCurrencyCode string `json:"fromCurrencyCode"`
	ToCurrencyCode   string `json:"toCurrencyCode"`
	ConvertedAmount  int64  `json:"convertedAmount"`
	Formatted        string `json:"formatted"`
}

// ToConvertResponse builds the response for a completed conversion.
func ToConvertResponse(amount int64, fromCode, toCode string, converted int64) ConvertResponse {
	return ConvertResponse{
		Amount:           amount,
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		ConvertedAmount:  converted,
		Formatted:        utils.FormatMinorUnits(converted, toCode),
	}
}

// ExchangeRateResponse defines the structure for API responses containing an
// exchange rate quote.
type ExchangeRateResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ObservedAt       time.Time       `json:"observedAt"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to its response DTO.
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		ObservedAt:       rate.ObservedAt,
	}
}

// WalletValueResponse is a wallet balance expressed in a requested display
// currency.
type WalletValueResponse struct {
	WalletID     string `json:"walletID"`
	CurrencyCode string `json:"currencyCode"`
	Value        int64  `json:"value"` // smallest units of CurrencyCode
	Formatted    string `json:"formatted"`
}

// ToWalletValueResponse builds the display-value response for a wallet.
func ToWalletValueResponse(walletID, currencyCode string, value int64) WalletValueResponse {
	return WalletValueResponse{
		WalletID:     walletID,
		CurrencyCode: currencyCode,
		Value:        value,
		Formatted:    utils.FormatMinorUnits(value, currencyCode),
	}
}
