package repositories

import (
	"context"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// Note: Context is included on every method for cancellation/timeouts.

// WalletRepository defines persistence operations for Wallets.
type WalletRepository interface {
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
	CountWalletsByUser(ctx context.Context, userID string) (int64, error)
	// UpdateWalletMonetary persists a recalculated balance and currency tag.
	UpdateWalletMonetary(ctx context.Context, walletID string, balance int64, currencyCode string) error
}

// TransactionRepository defines persistence operations for Transactions.
type TransactionRepository interface {
	ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	CountTransactionsByUser(ctx context.Context, userID string) (int64, error)
	UpdateTransactionMonetary(ctx context.Context, transactionID string, amount int64, currencyCode string) error
}

// BudgetRepository defines persistence operations for Budgets and their items.
type BudgetRepository interface {
	ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error)
	CountBudgetsByUser(ctx context.Context, userID string) (int64, error)
	UpdateBudgetMonetary(ctx context.Context, budgetID string, amount int64, currencyCode string) error

	ListBudgetItemsByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error)
	CountBudgetItemsByUser(ctx context.Context, userID string) (int64, error)
	UpdateBudgetItemMonetary(ctx context.Context, budgetItemID string, amount int64, currencyCode string) error
}

// InvestmentRepository defines persistence operations for investment
// transactions and lots.
type InvestmentRepository interface {
	ListInvestmentTransactionsByUser(ctx context.Context, userID string) ([]domain.InvestmentTransaction, error)
	CountInvestmentTransactionsByUser(ctx context.Context, userID string) (int64, error)
	UpdateInvestmentTransactionMonetary(ctx context.Context, investmentTransactionID string, amount int64, currencyCode string) error

	ListInvestmentLotsByUser(ctx context.Context, userID string) ([]domain.InvestmentLot, error)
	CountInvestmentLotsByUser(ctx context.Context, userID string) (int64, error)
	UpdateInvestmentLotMonetary(ctx context.Context, investmentLotID string, costBasis int64, currencyCode string) error
}

// UserRepository defines persistence operations for Users.
type UserRepository interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdatePreferredCurrency(ctx context.Context, userID string, currencyCode string) error
}
