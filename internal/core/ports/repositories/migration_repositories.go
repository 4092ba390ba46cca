package repositories

import (
	"context"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// MigrationRepository defines persistence operations for currency migration
// progress records. Records are append-only from the caller's perspective:
// they are inserted once and updated in place, never deleted.
type MigrationRepository interface {
	// SaveMigration inserts a new migration record. It returns
	// apperrors.ErrMigrationConflict when a non-terminal record already
	// exists for the same user.
	SaveMigration(ctx context.Context, migration domain.CurrencyMigration) error

	// UpdateMigration persists the mutable fields (status, processed count,
	// current step, completion time, error message) of an existing record.
	UpdateMigration(ctx context.Context, migration domain.CurrencyMigration) error

	// FindActiveMigrationByUser returns the user's pending or in-progress
	// migration, or apperrors.ErrNotFound when none exists.
	FindActiveMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error)

	// FindLatestMigrationByUser returns the user's most recently started
	// migration regardless of status, or apperrors.ErrNotFound.
	FindLatestMigrationByUser(ctx context.Context, userID string) (*domain.CurrencyMigration, error)

	// FailNonTerminalMigrations marks every pending/in-progress record as
	// failed with the given message. Run at startup: an interrupted process
	// cannot resume a half-finished run, and the one-active-per-user
	// invariant must be restored before new migrations start.
	FailNonTerminalMigrations(ctx context.Context, errorMessage string) (int64, error)
}
