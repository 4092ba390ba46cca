package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies a kind of monetary entity owned by a user. The constant
// values are part of the entity value cache key format and must stay stable.
type EntityType string

const (
	EntityTypeWallet                EntityType = "wallet"
	EntityTypeTransaction           EntityType = "transaction"
	EntityTypeBudget                EntityType = "budget"
	EntityTypeBudgetItem            EntityType = "budget_item"
	EntityTypeInvestmentTransaction EntityType = "investment_transaction"
	EntityTypeInvestmentLot         EntityType = "investment_lot"
)

// MigrationOrder is the fixed order in which entity types are re-denominated
// during a currency migration.
var MigrationOrder = []EntityType{
	EntityTypeWallet,
	EntityTypeTransaction,
	EntityTypeBudget,
	EntityTypeBudgetItem,
	EntityTypeInvestmentTransaction,
	EntityTypeInvestmentLot,
}

// Label returns the human-readable progress label shown to clients while
// entities of this type are being converted.
func (t EntityType) Label() string {
	switch t {
	case EntityTypeWallet:
		return "Converting wallets"
	case EntityTypeTransaction:
		return "Converting transactions"
	case EntityTypeBudget:
		return "Converting budgets"
	case EntityTypeBudgetItem:
		return "Converting budget items"
	case EntityTypeInvestmentTransaction:
		return "Converting investment transactions"
	case EntityTypeInvestmentLot:
		return "Converting investment lots"
	}
	return "Converting"
}

// Wallet holds a user's balance in the smallest unit of its currency.
type Wallet struct {
	WalletID     string `json:"walletID"`
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Balance      int64  `json:"balance"` // smallest units of CurrencyCode
	CurrencyCode string `json:"currencyCode"`
	AuditFields
}

// Transaction is a single income or expense entry. Amount is signed and stored
// in the smallest unit of its currency.
type Transaction struct {
	TransactionID string    `json:"transactionID"`
	UserID        string    `json:"userID"`
	WalletID      string    `json:"walletID"`
	Amount        int64     `json:"amount"` // smallest units, negative for expenses
	CurrencyCode  string    `json:"currencyCode"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurredAt"`
	AuditFields
}

// Budget is a per-period spending target.
type Budget struct {
	BudgetID     string    `json:"budgetID"`
	UserID       string    `json:"userID"`
	Name         string    `json:"name"`
	Amount       int64     `json:"amount"` // smallest units of CurrencyCode
	CurrencyCode string    `json:"currencyCode"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
	AuditFields
}

// BudgetItem is a category line inside a budget.
type BudgetItem struct {
	BudgetItemID string `json:"budgetItemID"`
	BudgetID     string `json:"budgetID"`
	UserID       string `json:"userID"`
	Category     string `json:"category"`
	Amount       int64  `json:"amount"` // smallest units of CurrencyCode
	CurrencyCode string `json:"currencyCode"`
	AuditFields
}

// InvestmentTransaction records a buy or sell of an instrument. Amount is the
// total consideration in the smallest unit of its currency.
type InvestmentTransaction struct {
	InvestmentTransactionID string          `json:"investmentTransactionID"`
	UserID                  string          `json:"userID"`
	Symbol                  string          `json:"symbol"`
	Quantity                decimal.Decimal `json:"quantity"`
	Amount                  int64           `json:"amount"` // smallest units, negative for sells
	CurrencyCode            string          `json:"currencyCode"`
	TradedAt                time.Time       `json:"tradedAt"`
	AuditFields
}

// InvestmentLot is an open position with its acquisition cost basis.
type InvestmentLot struct {
	InvestmentLotID string          `json:"investmentLotID"`
	UserID          string          `json:"userID"`
	Symbol          string          `json:"symbol"`
	Quantity        decimal.Decimal `json:"quantity"`
	CostBasis       int64           `json:"costBasis"` // smallest units of CurrencyCode
	CurrencyCode    string          `json:"currencyCode"`
	AcquiredAt      time.Time       `json:"acquiredAt"`
	AuditFields
}

// User is the owner of monetary entities. PreferredCurrencyCode is the display
// currency all of the user's entities are denominated in.
type User struct {
	UserID                string `json:"userID"`
	Name                  string `json:"name"`
	PreferredCurrencyCode string `json:"preferredCurrencyCode"`
	AuditFields
}
