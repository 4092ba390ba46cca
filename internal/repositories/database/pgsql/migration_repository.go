package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the Postgres error code raised by the partial unique
// index that allows at most one non-terminal migration per user.
const uniqueViolationCode = "23505"

type PgxMigrationRepository struct {
	db *pgxpool.Pool
}

func newPgxMigrationRepository(db *pgxpool.Pool) portsrepo.MigrationRepository {
	return &PgxMigrationRepository{db: db}
}

// Ensure PgxMigrationRepository implements portsrepo.MigrationRepository
var _ portsrepo.MigrationRepository = (*PgxMigrationRepository)(nil)

func (r *PgxMigrationRepository) SaveMigration(ctx context.Context, migration domain.CurrencyMigration) error {
	query := `
		INSERT INTO currency_migrations (
			migration_id, user_id, from_currency_code, to_currency_code, status,
			total_entities, processed_entities, current_step, started_at, completed_at, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		migration.MigrationID,
		migration.UserID,
		migration.FromCurrencyCode,
		migration.ToCurrencyCode,
		migration.Status,
		migration.TotalEntities,
		migration.ProcessedEntities,
		migration.CurrentStep,
		migration.StartedAt,
		migration.CompletedAt,
		migration.ErrorMessage,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: user %s already has an active migration", apperrors.ErrMigrationConflict, migration.UserID)
		}
		return fmt.Errorf("failed to save migration: %w", err)
	}
	return nil
}

func (r *PgxMigrationRepository) UpdateMigration(ctx context.Context, migration domain.CurrencyMigration) error {
	query := `
		UPDATE currency_migrations
		SET status = $1, processed_entities = $2, current_step = $3, completed_at = $4, error_message = $5
		WHERE migration_id = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		migration.Status,
		migration.ProcessedEntities,
		migration.CurrentStep,
		migration.CompletedAt,
		migration.ErrorMessage,
		migration.MigrationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update migration %s: %w", migration.MigrationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxMigrationRepository) FindActiveMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error) {
	query := migrationSelect + `
		WHERE user_id = $1 AND status IN ('pending', 'in_progress');
	`
	return r.queryOne(ctx, query, userID)
}

func (r *PgxMigrationRepository) FindLatestMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error) {
	query := migrationSelect + `
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT 1;
	`
	return r.queryOne(ctx, query, userID)
}

func (r *PgxMigrationRepository) FailNonTerminalMigrations(ctx context.Context, errorMessage string) (int64, error) {
	query := `
		UPDATE currency_migrations
		SET status = 'failed', error_message = $1, completed_at = NOW()
		WHERE status IN ('pending', 'in_progress');
	`
	cmdTag, err := r.db.Exec(ctx, query, errorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to fail non-terminal migrations: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

const migrationSelect = `
		SELECT migration_id, user_id, from_currency_code, to_currency_code, status,
		       total_entities, processed_entities, current_step, started_at, completed_at, error_message
		FROM currency_migrations
`

func (r *PgxMigrationRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.CurrencyMigration, error) {
	var migration domain.CurrencyMigration
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&migration.MigrationID,
		&migration.UserID,
		&migration.FromCurrencyCode,
		&migration.ToCurrencyCode,
		&migration.Status,
		&migration.TotalEntities,
		&migration.ProcessedEntities,
		&migration.CurrentStep,
		&migration.StartedAt,
		&migration.CompletedAt,
		&migration.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query migration: %w", err)
	}
	return &migration, nil
}
