package pgsql

import (
	"context"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	db *pgxpool.Pool
}

func newPgxBudgetRepository(db *pgxpool.Pool) portsrepo.BudgetRepository {
	return &PgxBudgetRepository{db: db}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepository
var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

func (r *PgxBudgetRepository) ListBudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `
		SELECT budget_id, user_id, name, amount, currency_code, period_start, period_end,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM budgets
		WHERE user_id = $1
		ORDER BY period_start;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var budget domain.Budget
		err := rows.Scan(
			&budget.BudgetID,
			&budget.UserID,
			&budget.Name,
			&budget.Amount,
			&budget.CurrencyCode,
			&budget.PeriodStart,
			&budget.PeriodEnd,
			&budget.CreatedAt,
			&budget.CreatedBy,
			&budget.LastUpdatedAt,
			&budget.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}
	return budgets, nil
}

func (r *PgxBudgetRepository) CountBudgetsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}
	return count, nil
}

func (r *PgxBudgetRepository) UpdateBudgetMonetary(ctx context.Context, budgetID string, amount int64, currencyCode string) error {
	query := `
		UPDATE budgets
		SET amount = $1, currency_code = $2, last_updated_at = NOW()
		WHERE budget_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, amount, currencyCode, budgetID)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBudgetRepository) ListBudgetItemsByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	query := `
		SELECT budget_item_id, budget_id, user_id, category, amount, currency_code,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM budget_items
		WHERE user_id = $1
		ORDER BY budget_id, category;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget items: %w", err)
	}
	defer rows.Close()

	items := []domain.BudgetItem{}
	for rows.Next() {
		var item domain.BudgetItem
		err := rows.Scan(
			&item.BudgetItemID,
			&item.BudgetID,
			&item.UserID,
			&item.Category,
			&item.Amount,
			&item.CurrencyCode,
			&item.CreatedAt,
			&item.CreatedBy,
			&item.LastUpdatedAt,
			&item.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget item row: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget item rows: %w", rows.Err())
	}
	return items, nil
}

func (r *PgxBudgetRepository) CountBudgetItemsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM budget_items WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count budget items: %w", err)
	}
	return count, nil
}

func (r *PgxBudgetRepository) UpdateBudgetItemMonetary(ctx context.Context, budgetItemID string, amount int64, currencyCode string) error {
	query := `
		UPDATE budget_items
		SET amount = $1, currency_code = $2, last_updated_at = NOW()
		WHERE budget_item_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, amount, currencyCode, budgetItemID)
	if err != nil {
		return fmt.Errorf("failed to update budget item %s: %w", budgetItemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
