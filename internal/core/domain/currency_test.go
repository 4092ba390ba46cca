package domain_test

import (
	"testing"

	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCurrencyCode(t *testing.T) {
	assert.Equal(t, "USD", domain.NormalizeCurrencyCode(" usd "))
	assert.Equal(t, "VND", domain.NormalizeCurrencyCode("vnd"))
	assert.Equal(t, "EUR", domain.NormalizeCurrencyCode("EUR"))
}

func TestIsValidCurrencyCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid upper-case", code: "USD", want: true},
		{name: "valid lower-case normalized", code: "eur", want: true},
		{name: "valid with whitespace", code: " jpy ", want: true},
		{name: "too short", code: "US", want: false},
		{name: "too long", code: "USDT", want: false},
		{name: "digits", code: "US1", want: false},
		{name: "empty", code: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsValidCurrencyCode(tt.code))
		})
	}
}

func TestMinorUnitMultiplier(t *testing.T) {
	tests := []struct {
		code string
		want int64
	}{
		{code: "USD", want: 100},
		{code: "EUR", want: 100},
		{code: "VND", want: 1},
		{code: "JPY", want: 1},
		{code: "KRW", want: 1},
		{code: "BHD", want: 1000},
		{code: "KWD", want: 1000},
		// Unknown codes default to two decimals
		{code: "ZZZ", want: 100},
		// Lower-case input is normalized first
		{code: "vnd", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MinorUnitMultiplier(tt.code))
		})
	}
}

func TestEntityTypeLabel(t *testing.T) {
	assert.Equal(t, "Converting wallets", domain.EntityTypeWallet.Label())
	assert.Equal(t, "Converting budget items", domain.EntityTypeBudgetItem.Label())
	assert.Equal(t, "Converting investment lots", domain.EntityTypeInvestmentLot.Label())
}

func TestMigrationStatusIsTerminal(t *testing.T) {
	assert.False(t, domain.MigrationStatusPending.IsTerminal())
	assert.False(t, domain.MigrationStatusInProgress.IsTerminal())
	assert.True(t, domain.MigrationStatusCompleted.IsTerminal())
	assert.True(t, domain.MigrationStatusFailed.IsTerminal())
}
