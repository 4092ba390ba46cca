package services

import (
	"context"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// MigrationStarterSvc starts background currency migrations.
type MigrationStarterSvc interface {
	// StartMigration creates the progress record and schedules the
	// background run. It returns apperrors.ErrMigrationConflict when a
	// non-terminal migration already exists for the user. The returned
	// record reflects the freshly created pending state.
	StartMigration(ctx context.Context, userID, fromCode, toCode string) (*domain.CurrencyMigration, error)
}

// MigrationReaderSvc exposes migration progress to pollers.
type MigrationReaderSvc interface {
	// GetMigrationStatus returns the user's most recent migration record,
	// or apperrors.ErrNotFound when the user never started one.
	GetMigrationStatus(ctx context.Context, userID string) (*domain.CurrencyMigration, error)
}

// MigrationSvcFacade combines all migration-related service interfaces.
type MigrationSvcFacade interface {
	MigrationStarterSvc
	MigrationReaderSvc
}
