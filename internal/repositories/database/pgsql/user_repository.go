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

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, name, preferred_currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM users
		WHERE user_id = $1;
	`
	var user domain.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.PreferredCurrencyCode,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return &user, nil
}

func (r *PgxUserRepository) UpdatePreferredCurrency(ctx context.Context, userID string, currencyCode string) error {
	query := `
		UPDATE users
		SET preferred_currency_code = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE user_id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, currencyCode, userID)
	if err != nil {
		return fmt.Errorf("failed to update preferred currency: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
