package pgsql

import (
	"context"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	db *pgxpool.Pool
}

func newPgxTransactionRepository(db *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{db: db}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepository
var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, user_id, wallet_id, amount, currency_code, description, occurred_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(
			&txn.TransactionID,
			&txn.UserID,
			&txn.WalletID,
			&txn.Amount,
			&txn.CurrencyCode,
			&txn.Description,
			&txn.OccurredAt,
			&txn.CreatedAt,
			&txn.CreatedBy,
			&txn.LastUpdatedAt,
			&txn.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

func (r *PgxTransactionRepository) CountTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) UpdateTransactionMonetary(ctx context.Context, transactionID string, amount int64, currencyCode string) error {
	query := `
		UPDATE transactions
		SET amount = $1, currency_code = $2, last_updated_at = NOW()
		WHERE transaction_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, amount, currencyCode, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
