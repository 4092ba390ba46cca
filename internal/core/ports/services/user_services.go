package services

import (
	"context"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// PreferenceWriterSvc changes a user's preferred display currency.
type PreferenceWriterSvc interface {
	// SetPreferredCurrency updates the preference and starts a currency
	// migration when the target differs from the current preference. The
	// returned bool reports whether a migration was started (false for a
	// same-currency no-op).
	SetPreferredCurrency(ctx context.Context, userID, currencyCode string) (*domain.User, bool, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	PreferenceWriterSvc
}
