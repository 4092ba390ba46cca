package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWalletRepository struct {
	db *pgxpool.Pool
}

func newPgxWalletRepository(db *pgxpool.Pool) portsrepo.WalletRepository {
	return &PgxWalletRepository{db: db}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepository
var _ portsrepo.WalletRepository = (*PgxWalletRepository)(nil)

func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `
		SELECT wallet_id, user_id, name, balance, currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM wallets
		WHERE wallet_id = $1;
	`
	var wallet domain.Wallet
	err := r.db.QueryRow(ctx, query, walletID).Scan(
		&wallet.WalletID,
		&wallet.UserID,
		&wallet.Name,
		&wallet.Balance,
		&wallet.CurrencyCode,
		&wallet.CreatedAt,
		&wallet.CreatedBy,
		&wallet.LastUpdatedAt,
		&wallet.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}
	return &wallet, nil
}

func (r *PgxWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `
		SELECT wallet_id, user_id, name, balance, currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		var wallet domain.Wallet
		err := rows.Scan(
			&wallet.WalletID,
			&wallet.UserID,
			&wallet.Name,
			&wallet.Balance,
			&wallet.CurrencyCode,
			&wallet.CreatedAt,
			&wallet.CreatedBy,
			&wallet.LastUpdatedAt,
			&wallet.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, wallet)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", rows.Err())
	}
	return wallets, nil
}

func (r *PgxWalletRepository) CountWalletsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return count, nil
}

func (r *PgxWalletRepository) UpdateWalletMonetary(ctx context.Context, walletID string, balance int64, currencyCode string) error {
	query := `
		UPDATE wallets
		SET balance = $1, currency_code = $2, last_updated_at = NOW()
		WHERE wallet_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, balance, currencyCode, walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %s: %w", walletID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
