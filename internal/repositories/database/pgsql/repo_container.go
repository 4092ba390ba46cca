package pgsql

import (
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx-backed repository implementations.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:        newPgxUserRepository(dbPool),
		WalletRepo:      newPgxWalletRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		BudgetRepo:      newPgxBudgetRepository(dbPool),
		InvestmentRepo:  newPgxInvestmentRepository(dbPool),
		MigrationRepo:   newPgxMigrationRepository(dbPool),
	}
}
