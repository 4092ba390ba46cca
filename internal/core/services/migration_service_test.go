package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/finwise/finwise_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionMonetary(ctx context.Context, transactionID string, amount int64, currencyCode string) error {
	args := m.Called(ctx, transactionID, amount, currencyCode)
	return args.Error(0)
}

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) CountBudgetsByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBudgetRepository) UpdateBudgetMonetary(ctx context.Context, budgetID string, amount int64, currencyCode string) error {
	args := m.Called(ctx, budgetID, amount, currencyCode)
	return args.Error(0)
}

func (m *MockBudgetRepository) ListBudgetItemsByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetItem), args.Error(1)
}

func (m *MockBudgetRepository) CountBudgetItemsByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBudgetRepository) UpdateBudgetItemMonetary(ctx context.Context, budgetItemID string, amount int64, currencyCode string) error {
	args := m.Called(ctx, budgetItemID, amount, currencyCode)
	return args.Error(0)
}

// --- Mock InvestmentRepository ---
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) ListInvestmentTransactionsByUser(ctx context.Context, userID string) ([]domain.InvestmentTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvestmentTransaction), args.Error(1)
}

func (m *MockInvestmentRepository) CountInvestmentTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvestmentRepository) UpdateInvestmentTransactionMonetary(ctx context.Context, investmentTransactionID string, amount int64, currencyCode string) error {
	args := m.Called(ctx, investmentTransactionID, amount, currencyCode)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ListInvestmentLotsByUser(ctx context.Context, userID string) ([]domain.InvestmentLot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvestmentLot), args.Error(1)
}

func (m *MockInvestmentRepository) CountInvestmentLotsByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvestmentRepository) UpdateInvestmentLotMonetary(ctx context.Context, investmentLotID string, costBasis int64, currencyCode string) error {
	args := m.Called(ctx, investmentLotID, costBasis, currencyCode)
	return args.Error(0)
}

// fakeMigrationRepo is an in-memory MigrationRepository recording every
// progress snapshot, so tests can assert on the full update sequence.
// updateErr, when set, can reject individual UpdateMigration writes.
type fakeMigrationRepo struct {
	mu        sync.Mutex
	records   map[string]domain.CurrencyMigration
	history   []domain.CurrencyMigration
	updateErr func(domain.CurrencyMigration) error
}

func newFakeMigrationRepo() *fakeMigrationRepo {
	return &fakeMigrationRepo{records: map[string]domain.CurrencyMigration{}}
}

func (f *fakeMigrationRepo) SaveMigration(ctx context.Context, migration domain.CurrencyMigration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.UserID == migration.UserID && !existing.Status.IsTerminal() {
			return apperrors.ErrMigrationConflict
		}
	}
	f.records[migration.MigrationID] = migration
	f.history = append(f.history, migration)
	return nil
}

func (f *fakeMigrationRepo) UpdateMigration(ctx context.Context, migration domain.CurrencyMigration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[migration.MigrationID]; !ok {
		return apperrors.ErrNotFound
	}
	if f.updateErr != nil {
		if err := f.updateErr(migration); err != nil {
			return err
		}
	}
	f.records[migration.MigrationID] = migration
	f.history = append(f.history, migration)
	return nil
}

func (f *fakeMigrationRepo) FindActiveMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.UserID == userID && !existing.Status.IsTerminal() {
			m := existing
			return &m, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeMigrationRepo) FindLatestMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.CurrencyMigration
	for _, existing := range f.records {
		if existing.UserID != userID {
			continue
		}
		if latest == nil || existing.StartedAt.After(latest.StartedAt) {
			m := existing
			latest = &m
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (f *fakeMigrationRepo) FailNonTerminalMigrations(ctx context.Context, errorMessage string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var failed int64
	now := time.Now()
	for id, existing := range f.records {
		if !existing.Status.IsTerminal() {
			existing.Status = domain.MigrationStatusFailed
			existing.ErrorMessage = errorMessage
			existing.CompletedAt = &now
			f.records[id] = existing
			failed++
		}
	}
	return failed, nil
}

// --- Test Suite ---
type CurrencyMigrationServiceTestSuite struct {
	suite.Suite
	migrationRepo *fakeMigrationRepo
	wallets       *MockWalletRepository
	transactions  *MockTransactionRepository
	budgets       *MockBudgetRepository
	investments   *MockInvestmentRepository
	rates         *MockRateReader
	valueCache    *services.EntityValueCache
	service       *services.CurrencyMigrationService
}

func (suite *CurrencyMigrationServiceTestSuite) SetupTest() {
	suite.migrationRepo = newFakeMigrationRepo()
	suite.wallets = new(MockWalletRepository)
	suite.transactions = new(MockTransactionRepository)
	suite.budgets = new(MockBudgetRepository)
	suite.investments = new(MockInvestmentRepository)
	suite.rates = new(MockRateReader)
	suite.valueCache = services.NewEntityValueCache(time.Hour)

	converter := services.NewConversionService(suite.rates, suite.valueCache, suite.wallets)
	suite.service = services.NewCurrencyMigrationService(
		suite.migrationRepo,
		suite.wallets,
		suite.transactions,
		suite.budgets,
		suite.investments,
		converter,
		suite.valueCache,
		nil,
		services.WithSynchronousRun(),
	)
}

const testUserID = "user-1"

// expectCounts wires the per-type entity counts used by StartMigration.
func (suite *CurrencyMigrationServiceTestSuite) expectCounts(wallets, txns, budgets, items, invTxns, lots int64) {
	suite.wallets.On("CountWalletsByUser", mock.Anything, testUserID).Return(wallets, nil)
	suite.transactions.On("CountTransactionsByUser", mock.Anything, testUserID).Return(txns, nil)
	suite.budgets.On("CountBudgetsByUser", mock.Anything, testUserID).Return(budgets, nil)
	suite.budgets.On("CountBudgetItemsByUser", mock.Anything, testUserID).Return(items, nil)
	suite.investments.On("CountInvestmentTransactionsByUser", mock.Anything, testUserID).Return(invTxns, nil)
	suite.investments.On("CountInvestmentLotsByUser", mock.Anything, testUserID).Return(lots, nil)
}

func (suite *CurrencyMigrationServiceTestSuite) expectEmptyListsExcept(except map[domain.EntityType]bool) {
	if !except[domain.EntityTypeWallet] {
		suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{}, nil)
	}
	if !except[domain.EntityTypeTransaction] {
		suite.transactions.On("ListTransactionsByUser", mock.Anything, testUserID).Return([]domain.Transaction{}, nil)
	}
	if !except[domain.EntityTypeBudget] {
		suite.budgets.On("ListBudgetsByUser", mock.Anything, testUserID).Return([]domain.Budget{}, nil)
	}
	if !except[domain.EntityTypeBudgetItem] {
		suite.budgets.On("ListBudgetItemsByUser", mock.Anything, testUserID).Return([]domain.BudgetItem{}, nil)
	}
	if !except[domain.EntityTypeInvestmentTransaction] {
		suite.investments.On("ListInvestmentTransactionsByUser", mock.Anything, testUserID).Return([]domain.InvestmentTransaction{}, nil)
	}
	if !except[domain.EntityTypeInvestmentLot] {
		suite.investments.On("ListInvestmentLotsByUser", mock.Anything, testUserID).Return([]domain.InvestmentLot{}, nil)
	}
}

func (suite *CurrencyMigrationServiceTestSuite) TestStartMigration_Success() {
	ctx := context.Background()
	suite.expectCounts(2, 1, 0, 0, 0, 1)

	suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{
		{WalletID: "wallet-1", UserID: testUserID, Balance: 10000, CurrencyCode: "USD"},
		{WalletID: "wallet-2", UserID: testUserID, Balance: 250, CurrencyCode: "USD"},
	}, nil)
	suite.transactions.On("ListTransactionsByUser", mock.Anything, testUserID).Return([]domain.Transaction{
		{TransactionID: "txn-1", UserID: testUserID, Amount: -4200, CurrencyCode: "USD"},
	}, nil)
	suite.investments.On("ListInvestmentLotsByUser", mock.Anything, testUserID).Return([]domain.InvestmentLot{
		{InvestmentLotID: "lot-1", UserID: testUserID, CostBasis: 50000, CurrencyCode: "EUR"},
	}, nil)
	suite.expectEmptyListsExcept(map[domain.EntityType]bool{
		domain.EntityTypeWallet:        true,
		domain.EntityTypeTransaction:   true,
		domain.EntityTypeInvestmentLot: true,
	})

	suite.rates.On("GetRate", mock.Anything, "USD", "VND").Return(rateFor("USD", "VND", decimal.NewFromInt(25850)), nil)
	suite.rates.On("GetRate", mock.Anything, "EUR", "VND").Return(rateFor("EUR", "VND", decimal.NewFromInt(28000)), nil)

	// 100.00 USD -> 2585000 VND, 2.50 USD -> 64625 VND, -42.00 USD -> -1085700 VND,
	// 500.00 EUR -> 14000000 VND.
	suite.wallets.On("UpdateWalletMonetary", mock.Anything, "wallet-1", int64(2585000), "VND").Return(nil).Once()
	suite.wallets.On("UpdateWalletMonetary", mock.Anything, "wallet-2", int64(64625), "VND").Return(nil).Once()
	suite.transactions.On("UpdateTransactionMonetary", mock.Anything, "txn-1", int64(-1085700), "VND").Return(nil).Once()
	suite.investments.On("UpdateInvestmentLotMonetary", mock.Anything, "lot-1", int64(14000000), "VND").Return(nil).Once()

	// Pre-seed converted display values: the migrating user's entry must be
	// purged on completion, the other user's must survive.
	suite.valueCache.Set(testUserID, domain.EntityTypeWallet, "wallet-1", "USD", 10000)
	suite.valueCache.Set("user-2", domain.EntityTypeWallet, "wallet-7", "USD", 777)

	migration, err := suite.service.StartMigration(ctx, testUserID, "USD", "VND")
	suite.Require().NoError(err)
	suite.Require().NotNil(migration)
	suite.Equal(int64(4), migration.TotalEntities)

	final, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.Equal(domain.MigrationStatusCompleted, final.Status)
	suite.Equal(int64(4), final.ProcessedEntities)
	suite.Require().NotNil(final.CompletedAt)
	suite.Empty(final.ErrorMessage)

	_, ok := suite.valueCache.Get(testUserID, domain.EntityTypeWallet, "wallet-1", "USD")
	suite.False(ok, "migrating user's cached values must be purged on completion")
	_, ok = suite.valueCache.Get("user-2", domain.EntityTypeWallet, "wallet-7", "USD")
	suite.True(ok, "other users' cached values must be untouched")

	suite.wallets.AssertExpectations(suite.T())
	suite.transactions.AssertExpectations(suite.T())
	suite.investments.AssertExpectations(suite.T())
}

func (suite *CurrencyMigrationServiceTestSuite) TestStartMigration_RejectedWhileActive() {
	ctx := context.Background()
	err := suite.migrationRepo.SaveMigration(ctx, domain.CurrencyMigration{
		MigrationID: "existing", UserID: testUserID,
		FromCurrencyCode: "USD", ToCurrencyCode: "EUR",
		Status: domain.MigrationStatusInProgress, StartedAt: time.Now(),
	})
	suite.Require().NoError(err)

	migration, err := suite.service.StartMigration(ctx, testUserID, "USD", "VND")
	suite.Require().Error(err)
	suite.Nil(migration)
	suite.ErrorIs(err, apperrors.ErrMigrationConflict)
}

func (suite *CurrencyMigrationServiceTestSuite) TestStartMigration_AllowedAfterTerminal() {
	ctx := context.Background()
	completedAt := time.Now().Add(-time.Hour)
	err := suite.migrationRepo.SaveMigration(ctx, domain.CurrencyMigration{
		MigrationID: "previous", UserID: testUserID,
		FromCurrencyCode: "EUR", ToCurrencyCode: "USD",
		Status: domain.MigrationStatusFailed, StartedAt: completedAt, CompletedAt: &completedAt,
		ErrorMessage: "currency conversion failed while converting wallets",
	})
	suite.Require().NoError(err)

	suite.expectCounts(0, 0, 0, 0, 0, 0)
	suite.expectEmptyListsExcept(nil)

	migration, err := suite.service.StartMigration(ctx, testUserID, "USD", "VND")
	suite.Require().NoError(err)
	suite.Require().NotNil(migration)

	final, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.Equal(domain.MigrationStatusCompleted, final.Status)
	suite.Equal(int64(0), final.ProcessedEntities)
}

func (suite *CurrencyMigrationServiceTestSuite) TestStartMigration_SameCurrencyRejected() {
	_, err := suite.service.StartMigration(context.Background(), testUserID, "USD", "usd")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyMigrationServiceTestSuite) TestStartMigration_InvalidCurrencyRejected() {
	_, err := suite.service.StartMigration(context.Background(), testUserID, "USD", "DONG")
	suite.ErrorIs(err, apperrors.ErrInvalidCurrency)
}

func (suite *CurrencyMigrationServiceTestSuite) TestMigrationFailure_PartialProgressRetained() {
	ctx := context.Background()
	suite.expectCounts(1, 1, 0, 0, 0, 0)

	suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{
		{WalletID: "wallet-1", UserID: testUserID, Balance: 10000, CurrencyCode: "USD"},
	}, nil)
	suite.transactions.On("ListTransactionsByUser", mock.Anything, testUserID).Return([]domain.Transaction{
		{TransactionID: "txn-1", UserID: testUserID, Amount: -100, CurrencyCode: "GBP"},
	}, nil)
	suite.expectEmptyListsExcept(map[domain.EntityType]bool{
		domain.EntityTypeWallet:      true,
		domain.EntityTypeTransaction: true,
	})

	suite.rates.On("GetRate", mock.Anything, "USD", "VND").Return(rateFor("USD", "VND", decimal.NewFromInt(25850)), nil)
	// The transaction step's pair returns an implausible rate; validation
	// failures are not retried.
	suite.rates.On("GetRate", mock.Anything, "GBP", "VND").
		Return(nil, fmt.Errorf("%w: 99999999 for GBP to VND", apperrors.ErrRateOutOfRange)).Once()

	suite.wallets.On("UpdateWalletMonetary", mock.Anything, "wallet-1", int64(2585000), "VND").Return(nil).Once()

	// A budget entry survives the failed run: only completion purges the user.
	suite.valueCache.Set(testUserID, domain.EntityTypeBudget, "budget-1", "USD", 500)

	migration, err := suite.service.StartMigration(ctx, testUserID, "USD", "VND")
	suite.Require().NoError(err, "the triggering request never sees run failures")
	suite.Require().NotNil(migration)

	final, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.Equal(domain.MigrationStatusFailed, final.Status)
	// The converted wallet stays converted: failure is reported, not undone.
	suite.Equal(int64(1), final.ProcessedEntities)
	suite.Require().NotNil(final.CompletedAt)
	suite.Equal("currency conversion failed while converting transactions", final.ErrorMessage)
	suite.NotContains(final.ErrorMessage, "99999999", "raw rate internals must not leak to pollers")

	_, ok := suite.valueCache.Get(testUserID, domain.EntityTypeBudget, "budget-1", "USD")
	suite.True(ok, "failed runs must not purge the user's cache")

	suite.wallets.AssertExpectations(suite.T())
	suite.rates.AssertExpectations(suite.T())
}

func (suite *CurrencyMigrationServiceTestSuite) TestMigration_TransientProviderErrorRetried() {
	ctx := context.Background()
	suite.expectCounts(1, 0, 0, 0, 0, 0)

	suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{
		{WalletID: "wallet-1", UserID: testUserID, Balance: 100, CurrencyCode: "USD"},
	}, nil)
	suite.expectEmptyListsExcept(map[domain.EntityType]bool{domain.EntityTypeWallet: true})

	suite.rates.On("GetRate", mock.Anything, "USD", "EUR").
		Return(nil, fmt.Errorf("%w: timeout", apperrors.ErrProvider)).Twice()
	suite.rates.On("GetRate", mock.Anything, "USD", "EUR").
		Return(rateFor("USD", "EUR", decimal.NewFromFloat(0.92)), nil).Once()

	suite.wallets.On("UpdateWalletMonetary", mock.Anything, "wallet-1", int64(92), "EUR").Return(nil).Once()

	_, err := suite.service.StartMigration(ctx, testUserID, "USD", "EUR")
	suite.Require().NoError(err)

	final, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.Equal(domain.MigrationStatusCompleted, final.Status)

	suite.rates.AssertExpectations(suite.T())
}

func (suite *CurrencyMigrationServiceTestSuite) TestMigration_ProgressMonotonic() {
	ctx := context.Background()
	suite.expectCounts(2, 1, 0, 0, 0, 0)

	suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{
		{WalletID: "wallet-1", UserID: testUserID, Balance: 100, CurrencyCode: "USD"},
		{WalletID: "wallet-2", UserID: testUserID, Balance: 200, CurrencyCode: "USD"},
	}, nil)
	suite.transactions.On("ListTransactionsByUser", mock.Anything, testUserID).Return([]domain.Transaction{
		{TransactionID: "txn-1", UserID: testUserID, Amount: 300, CurrencyCode: "USD"},
	}, nil)
	suite.expectEmptyListsExcept(map[domain.EntityType]bool{
		domain.EntityTypeWallet:      true,
		domain.EntityTypeTransaction: true,
	})

	suite.rates.On("GetRate", mock.Anything, "USD", "EUR").Return(rateFor("USD", "EUR", decimal.NewFromFloat(0.92)), nil)
	suite.wallets.On("UpdateWalletMonetary", mock.Anything, mock.Anything, mock.Anything, "EUR").Return(nil)
	suite.transactions.On("UpdateTransactionMonetary", mock.Anything, "txn-1", int64(276), "EUR").Return(nil)

	_, err := suite.service.StartMigration(ctx, testUserID, "USD", "EUR")
	suite.Require().NoError(err)

	var prev int64
	for _, snapshot := range suite.migrationRepo.history {
		suite.GreaterOrEqual(snapshot.ProcessedEntities, prev, "processedEntities must never decrease")
		suite.LessOrEqual(snapshot.ProcessedEntities, snapshot.TotalEntities)
		if snapshot.Status == domain.MigrationStatusCompleted {
			suite.Equal(snapshot.TotalEntities, snapshot.ProcessedEntities)
		}
		prev = snapshot.ProcessedEntities
	}

	final := suite.migrationRepo.history[len(suite.migrationRepo.history)-1]
	suite.Equal(domain.MigrationStatusCompleted, final.Status)
}

func (suite *CurrencyMigrationServiceTestSuite) TestMigration_StepsFollowEntityOrder() {
	ctx := context.Background()
	suite.expectCounts(0, 0, 0, 0, 0, 0)
	suite.expectEmptyListsExcept(nil)

	_, err := suite.service.StartMigration(ctx, testUserID, "USD", "EUR")
	suite.Require().NoError(err)

	var labels []string
	for _, snapshot := range suite.migrationRepo.history {
		if n := len(labels); snapshot.CurrentStep != "" && (n == 0 || labels[n-1] != snapshot.CurrentStep) {
			labels = append(labels, snapshot.CurrentStep)
		}
	}

	want := make([]string, len(domain.MigrationOrder))
	for i, entityType := range domain.MigrationOrder {
		want[i] = entityType.Label()
	}
	suite.Equal(want, labels)
}

func (suite *CurrencyMigrationServiceTestSuite) TestMigration_TerminalEvenWhenCompletionWriteFails() {
	ctx := context.Background()
	suite.expectCounts(1, 0, 0, 0, 0, 0)

	suite.wallets.On("ListWalletsByUser", mock.Anything, testUserID).Return([]domain.Wallet{
		{WalletID: "wallet-1", UserID: testUserID, Balance: 100, CurrencyCode: "USD"},
	}, nil)
	suite.expectEmptyListsExcept(map[domain.EntityType]bool{domain.EntityTypeWallet: true})

	suite.rates.On("GetRate", mock.Anything, "USD", "EUR").Return(rateFor("USD", "EUR", decimal.NewFromFloat(0.92)), nil)
	suite.wallets.On("UpdateWalletMonetary", mock.Anything, "wallet-1", int64(92), "EUR").Return(nil)

	var rejected bool
	suite.migrationRepo.updateErr = func(m domain.CurrencyMigration) error {
		if m.Status == domain.MigrationStatusCompleted && !rejected {
			rejected = true
			return fmt.Errorf("storage write failed")
		}
		return nil
	}

	_, err := suite.service.StartMigration(ctx, testUserID, "USD", "EUR")
	suite.Require().NoError(err)
	suite.True(rejected)

	// The record must not be stuck in_progress until a restart.
	final, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.True(final.Status.IsTerminal())
	suite.Equal(domain.MigrationStatusFailed, final.Status)
	suite.Require().NotNil(final.CompletedAt)
	suite.Equal("could not persist migration completion", final.ErrorMessage)

	// And the user can start over immediately.
	_, err = suite.service.StartMigration(ctx, testUserID, "USD", "EUR")
	suite.Require().NoError(err)
	again, err := suite.service.GetMigrationStatus(ctx, testUserID)
	suite.Require().NoError(err)
	suite.Equal(domain.MigrationStatusCompleted, again.Status)
}

func (suite *CurrencyMigrationServiceTestSuite) TestGetMigrationStatus_NoneStarted() {
	_, err := suite.service.GetMigrationStatus(context.Background(), "user-without-migrations")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestCurrencyMigrationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyMigrationServiceTestSuite))
}
