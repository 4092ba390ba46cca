package pgsql

import (
	"context"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInvestmentRepository struct {
	db *pgxpool.Pool
}

func newPgxInvestmentRepository(db *pgxpool.Pool) portsrepo.InvestmentRepository {
	return &PgxInvestmentRepository{db: db}
}

// Ensure PgxInvestmentRepository implements portsrepo.InvestmentRepository
var _ portsrepo.InvestmentRepository = (*PgxInvestmentRepository)(nil)

func (r *PgxInvestmentRepository) ListInvestmentTransactionsByUser(ctx context.Context, userID string) ([]domain.InvestmentTransaction, error) {
	query := `
		SELECT investment_transaction_id, user_id, symbol, quantity, amount, currency_code, traded_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM investment_transactions
		WHERE user_id = $1
		ORDER BY traded_at;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.InvestmentTransaction{}
	for rows.Next() {
		var txn domain.InvestmentTransaction
		err := rows.Scan(
			&txn.InvestmentTransactionID,
			&txn.UserID,
			&txn.Symbol,
			&txn.Quantity,
			&txn.Amount,
			&txn.CurrencyCode,
			&txn.TradedAt,
			&txn.CreatedAt,
			&txn.CreatedBy,
			&txn.LastUpdatedAt,
			&txn.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating investment transaction rows: %w", rows.Err())
	}
	return txns, nil
}

func (r *PgxInvestmentRepository) CountInvestmentTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM investment_transactions WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count investment transactions: %w", err)
	}
	return count, nil
}

func (r *PgxInvestmentRepository) UpdateInvestmentTransactionMonetary(ctx context.Context, investmentTransactionID string, amount int64, currencyCode string) error {
	query := `
		UPDATE investment_transactions
		SET amount = $1, currency_code = $2, last_updated_at = NOW()
		WHERE investment_transaction_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, amount, currencyCode, investmentTransactionID)
	if err != nil {
		return fmt.Errorf("failed to update investment transaction %s: %w", investmentTransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInvestmentRepository) ListInvestmentLotsByUser(ctx context.Context, userID string) ([]domain.InvestmentLot, error) {
	query := `
		SELECT investment_lot_id, user_id, symbol, quantity, cost_basis, currency_code, acquired_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM investment_lots
		WHERE user_id = $1
		ORDER BY acquired_at;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment lots: %w", err)
	}
	defer rows.Close()

	lots := []domain.InvestmentLot{}
	for rows.Next() {
		var lot domain.InvestmentLot
		err := rows.Scan(
			&lot.InvestmentLotID,
			&lot.UserID,
			&lot.Symbol,
			&lot.Quantity,
			&lot.CostBasis,
			&lot.CurrencyCode,
			&lot.AcquiredAt,
			&lot.CreatedAt,
			&lot.CreatedBy,
			&lot.LastUpdatedAt,
			&lot.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment lot row: %w", err)
		}
		lots = append(lots, lot)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating investment lot rows: %w", rows.Err())
	}
	return lots, nil
}

func (r *PgxInvestmentRepository) CountInvestmentLotsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM investment_lots WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count investment lots: %w", err)
	}
	return count, nil
}

func (r *PgxInvestmentRepository) UpdateInvestmentLotMonetary(ctx context.Context, investmentLotID string, costBasis int64, currencyCode string) error {
	query := `
		UPDATE investment_lots
		SET cost_basis = $1, currency_code = $2, last_updated_at = NOW()
		WHERE investment_lot_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, costBasis, currencyCode, investmentLotID)
	if err != nil {
		return fmt.Errorf("failed to update investment lot %s: %w", investmentLotID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
