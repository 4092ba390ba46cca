package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

// defaultRateAttempts bounds how many times one currency group's rate fetch is
// retried inside a migration run before the run fails.
const defaultRateAttempts = 3

// CurrencyMigrationService coordinates the one-shot background pass that
// re-denominates all of a user's monetary entities after a preference change.
// The triggering request returns as soon as the pending record exists; all
// conversion work happens off the request path and progress is observed by
// polling. There is no mid-flight cancellation and no rollback on failure:
// already-converted entities stay converted and a re-run converts them again
// from their current state, which is deterministic and safe.
type CurrencyMigrationService struct {
	migrationRepo portsrepo.MigrationRepository
	wallets       portsrepo.WalletRepository
	transactions  portsrepo.TransactionRepository
	budgets       portsrepo.BudgetRepository
	investments   portsrepo.InvestmentRepository
	converter     portssvc.ConverterSvc
	valueCache    *EntityValueCache
	logger        *slog.Logger
	synchronous   bool
	rateAttempts  int
}

// MigrationServiceOption configures a CurrencyMigrationService.
type MigrationServiceOption func(*CurrencyMigrationService)

// WithSynchronousRun makes StartMigration execute the run inline instead of in
// a background goroutine. Intended for tests that need deterministic ordering.
func WithSynchronousRun() MigrationServiceOption {
	return func(s *CurrencyMigrationService) {
		s.synchronous = true
	}
}

// WithRateAttempts overrides the bounded per-group rate fetch attempt count.
func WithRateAttempts(attempts int) MigrationServiceOption {
	return func(s *CurrencyMigrationService) {
		if attempts > 0 {
			s.rateAttempts = attempts
		}
	}
}

// NewCurrencyMigrationService creates a CurrencyMigrationService.
func NewCurrencyMigrationService(
	migrationRepo portsrepo.MigrationRepository,
	wallets portsrepo.WalletRepository,
	transactions portsrepo.TransactionRepository,
	budgets portsrepo.BudgetRepository,
	investments portsrepo.InvestmentRepository,
	converter portssvc.ConverterSvc,
	valueCache *EntityValueCache,
	logger *slog.Logger,
	opts ...MigrationServiceOption,
) *CurrencyMigrationService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CurrencyMigrationService{
		migrationRepo: migrationRepo,
		wallets:       wallets,
		transactions:  transactions,
		budgets:       budgets,
		investments:   investments,
		converter:     converter,
		valueCache:    valueCache,
		logger:        logger,
		rateAttempts:  defaultRateAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartMigration creates the progress record and schedules the background run.
func (s *CurrencyMigrationService) StartMigration(ctx context.Context, userID, fromCode, toCode string) (*domain.CurrencyMigration, error) {
	if !domain.IsValidCurrencyCode(fromCode) || !domain.IsValidCurrencyCode(toCode) {
		return nil, fmt.Errorf("%w: migration pair %q to %q", apperrors.ErrInvalidCurrency, fromCode, toCode)
	}
	fromCode = domain.NormalizeCurrencyCode(fromCode)
	toCode = domain.NormalizeCurrencyCode(toCode)
	if fromCode == toCode {
		return nil, fmt.Errorf("%w: migration target equals current currency", apperrors.ErrValidation)
	}

	active, err := s.migrationRepo.FindActiveMigrationByUser(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for active migration: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: migration %s is %s", apperrors.ErrMigrationConflict, active.MigrationID, active.Status)
	}

	total, err := s.countEntities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entities for migration: %w", err)
	}

	migration := domain.CurrencyMigration{
		MigrationID:      uuid.NewString(),
		UserID:           userID,
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Status:           domain.MigrationStatusPending,
		TotalEntities:    total,
		StartedAt:        time.Now(),
	}
	if err := s.migrationRepo.SaveMigration(ctx, migration); err != nil {
		// The repository enforces one active migration per user; a racing
		// start surfaces here as a conflict.
		return nil, err
	}

	if s.synchronous {
		s.run(ctx, migration)
	} else {
		// Detach from the request lifetime but keep context values.
		go s.run(context.WithoutCancel(ctx), migration)
	}
	return &migration, nil
}

// GetMigrationStatus returns the user's most recent migration record.
func (s *CurrencyMigrationService) GetMigrationStatus(ctx context.Context, userID string) (*domain.CurrencyMigration, error) {
	return s.migrationRepo.FindLatestMigrationByUser(ctx, userID)
}

func (s *CurrencyMigrationService) countEntities(ctx context.Context, userID string) (int64, error) {
	counts := []func(context.Context, string) (int64, error){
		s.wallets.CountWalletsByUser,
		s.transactions.CountTransactionsByUser,
		s.budgets.CountBudgetsByUser,
		s.budgets.CountBudgetItemsByUser,
		s.investments.CountInvestmentTransactionsByUser,
		s.investments.CountInvestmentLotsByUser,
	}
	var total int64
	for _, count := range counts {
		n, err := count(ctx, userID)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// migrationItem is the monetary slice of one entity a step has to convert.
type migrationItem struct {
	entityID     string
	amount       int64
	currencyCode string
}

// migrationStep loads one entity type's items and knows how to persist a
// converted amount back.
type migrationStep struct {
	entityType domain.EntityType
	load       func(ctx context.Context, userID string) ([]migrationItem, error)
	update     func(ctx context.Context, entityID string, amount int64, currencyCode string) error
}

// run executes the migration to a terminal state. Errors never propagate to
// the caller that triggered the run; they are recorded on the progress record.
func (s *CurrencyMigrationService) run(ctx context.Context, migration domain.CurrencyMigration) {
	logger := s.logger.With(
		slog.String("migration_id", migration.MigrationID),
		slog.String("user_id", migration.UserID),
		slog.String("from", migration.FromCurrencyCode),
		slog.String("to", migration.ToCurrencyCode),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("currency migration panicked", slog.Any("panic", r))
			s.markFailed(ctx, &migration, "internal error during currency migration")
		}
	}()

	migration.Status = domain.MigrationStatusInProgress
	if err := s.migrationRepo.UpdateMigration(ctx, migration); err != nil {
		logger.Error("failed to mark migration in progress", slog.String("error", err.Error()))
		s.markFailed(ctx, &migration, "could not persist migration progress")
		return
	}
	logger.Info("currency migration started", slog.Int64("total_entities", migration.TotalEntities))

	for _, step := range s.steps() {
		migration.CurrentStep = step.entityType.Label()
		if err := s.migrationRepo.UpdateMigration(ctx, migration); err != nil {
			logger.Error("failed to persist migration step", slog.String("error", err.Error()))
			s.markFailed(ctx, &migration, "could not persist migration progress")
			return
		}

		if err := s.runStep(ctx, &migration, step); err != nil {
			logger.Error("migration step failed",
				slog.String("step", string(step.entityType)),
				slog.String("error", err.Error()),
			)
			// Raw provider/storage errors stay in the logs; pollers get a
			// stable, caller-safe message.
			s.markFailed(ctx, &migration, fmt.Sprintf("currency conversion failed while %s",
				strings.ToLower(step.entityType.Label())))
			return
		}
	}

	now := time.Now()
	migration.Status = domain.MigrationStatusCompleted
	migration.CompletedAt = &now
	if err := s.migrationRepo.UpdateMigration(ctx, migration); err != nil {
		logger.Error("failed to mark migration completed", slog.String("error", err.Error()))
		// The entities are all converted, but a record stuck in_progress would
		// block the user until a restart. Force a terminal state; a re-run
		// converts from current state and is safe.
		s.markFailed(ctx, &migration, "could not persist migration completion")
		return
	}
	// Purge converted display values only after the terminal state is
	// durable, so a poller that sees "completed" never reads a stale value.
	s.valueCache.DeleteUser(migration.UserID)
	logger.Info("currency migration completed", slog.Int64("processed_entities", migration.ProcessedEntities))
}

// runStep converts and persists every entity of one type, grouping amounts by
// their source currency so each distinct pair resolves its rate once.
func (s *CurrencyMigrationService) runStep(ctx context.Context, migration *domain.CurrencyMigration, step migrationStep) error {
	items, err := step.load(ctx, migration.UserID)
	if err != nil {
		return fmt.Errorf("loading %s entities: %w", step.entityType, err)
	}

	groups := map[string][]int{}
	for i, item := range items {
		code := domain.NormalizeCurrencyCode(item.currencyCode)
		groups[code] = append(groups[code], i)
	}

	for sourceCode, indexes := range groups {
		amounts := make([]int64, len(indexes))
		for i, idx := range indexes {
			amounts[i] = items[idx].amount
		}

		converted, err := s.convertBatchWithRetry(ctx, amounts, sourceCode, migration.ToCurrencyCode)
		if err != nil {
			return fmt.Errorf("converting %s amounts from %s: %w", step.entityType, sourceCode, err)
		}

		for i, idx := range indexes {
			item := items[idx]
			if err := step.update(ctx, item.entityID, converted[i], migration.ToCurrencyCode); err != nil {
				return fmt.Errorf("updating %s %s: %w", step.entityType, item.entityID, err)
			}
			// The stored amount changed; any memoized display value for
			// this entity is now stale.
			s.valueCache.DeleteEntity(migration.UserID, step.entityType, item.entityID)

			migration.ProcessedEntities++
			if err := s.migrationRepo.UpdateMigration(ctx, *migration); err != nil {
				return fmt.Errorf("persisting progress: %w", err)
			}
		}
	}
	return nil
}

// convertBatchWithRetry retries transient provider failures a bounded number
// of times. Validation failures (implausible rates, bad codes) fail fast.
func (s *CurrencyMigrationService) convertBatchWithRetry(ctx context.Context, amounts []int64, fromCode, toCode string) ([]int64, error) {
	var lastErr error
	for attempt := 1; attempt <= s.rateAttempts; attempt++ {
		converted, err := s.converter.ConvertBatch(ctx, amounts, fromCode, toCode)
		if err == nil {
			return converted, nil
		}
		lastErr = err
		if !errors.Is(err, apperrors.ErrProvider) && !errors.Is(err, apperrors.ErrThrottled) {
			return nil, err
		}
		if attempt < s.rateAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func (s *CurrencyMigrationService) markFailed(ctx context.Context, migration *domain.CurrencyMigration, message string) {
	now := time.Now()
	migration.Status = domain.MigrationStatusFailed
	migration.ErrorMessage = message
	migration.CompletedAt = &now
	if err := s.migrationRepo.UpdateMigration(ctx, *migration); err != nil {
		s.logger.Error("failed to mark migration failed",
			slog.String("migration_id", migration.MigrationID),
			slog.String("error", err.Error()),
		)
	}
}

// steps returns one step per entity type, ordered by domain.MigrationOrder.
func (s *CurrencyMigrationService) steps() []migrationStep {
	byType := map[domain.EntityType]migrationStep{}
	for _, step := range []migrationStep{
		{
			entityType: domain.EntityTypeWallet,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				wallets, err := s.wallets.ListWalletsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(wallets))
				for i, w := range wallets {
					items[i] = migrationItem{entityID: w.WalletID, amount: w.Balance, currencyCode: w.CurrencyCode}
				}
				return items, nil
			},
			update: s.wallets.UpdateWalletMonetary,
		},
		{
			entityType: domain.EntityTypeTransaction,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				txns, err := s.transactions.ListTransactionsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(txns))
				for i, t := range txns {
					items[i] = migrationItem{entityID: t.TransactionID, amount: t.Amount, currencyCode: t.CurrencyCode}
				}
				return items, nil
			},
			update: s.transactions.UpdateTransactionMonetary,
		},
		{
			entityType: domain.EntityTypeBudget,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				budgets, err := s.budgets.ListBudgetsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(budgets))
				for i, b := range budgets {
					items[i] = migrationItem{entityID: b.BudgetID, amount: b.Amount, currencyCode: b.CurrencyCode}
				}
				return items, nil
			},
			update: s.budgets.UpdateBudgetMonetary,
		},
		{
			entityType: domain.EntityTypeBudgetItem,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				budgetItems, err := s.budgets.ListBudgetItemsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(budgetItems))
				for i, b := range budgetItems {
					items[i] = migrationItem{entityID: b.BudgetItemID, amount: b.Amount, currencyCode: b.CurrencyCode}
				}
				return items, nil
			},
			update: s.budgets.UpdateBudgetItemMonetary,
		},
		{
			entityType: domain.EntityTypeInvestmentTransaction,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				txns, err := s.investments.ListInvestmentTransactionsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(txns))
				for i, t := range txns {
					items[i] = migrationItem{entityID: t.InvestmentTransactionID, amount: t.Amount, currencyCode: t.CurrencyCode}
				}
				return items, nil
			},
			update: s.investments.UpdateInvestmentTransactionMonetary,
		},
		{
			entityType: domain.EntityTypeInvestmentLot,
			load: func(ctx context.Context, userID string) ([]migrationItem, error) {
				lots, err := s.investments.ListInvestmentLotsByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				items := make([]migrationItem, len(lots))
				for i, l := range lots {
					items[i] = migrationItem{entityID: l.InvestmentLotID, amount: l.CostBasis, currencyCode: l.CurrencyCode}
				}
				return items, nil
			},
			update: s.investments.UpdateInvestmentLotMonetary,
		},
	} {
		byType[step.entityType] = step
	}

	steps := make([]migrationStep, 0, len(domain.MigrationOrder))
	for _, entityType := range domain.MigrationOrder {
		steps = append(steps, byType[entityType])
	}
	return steps
}
