package repositories

// RepositoryProvider aggregates all repository implementations so they can be
// passed around as a single dependency when constructing services.
type RepositoryProvider struct {
	UserRepo        UserRepository
	WalletRepo      WalletRepository
	TransactionRepo TransactionRepository
	BudgetRepo      BudgetRepository
	InvestmentRepo  InvestmentRepository
	MigrationRepo   MigrationRepository
}
