package services

import (
	"context"
	"fmt"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
)

// UserService provides business logic for users and their currency preference.
type UserService struct {
	userRepo  portsrepo.UserRepository
	migration portssvc.MigrationStarterSvc
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, migration portssvc.MigrationStarterSvc) *UserService {
	return &UserService{
		userRepo:  userRepo,
		migration: migration,
	}
}

// GetUserByID retrieves a user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id in service: %w", err)
	}
	return user, nil
}

// SetPreferredCurrency updates the user's preferred display currency and
// starts the re-denomination migration when the target actually differs.
// Requesting the currency the user already has is a no-op with started=false.
func (s *UserService) SetPreferredCurrency(ctx context.Context, userID, currencyCode string) (*domain.User, bool, error) {
	if !domain.IsValidCurrencyCode(currencyCode) {
		return nil, false, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, currencyCode)
	}
	currencyCode = domain.NormalizeCurrencyCode(currencyCode)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load user for preference change: %w", err)
	}

	if user.PreferredCurrencyCode == currencyCode {
		return user, false, nil
	}

	// Start the migration first: it holds the per-user exclusivity, so a
	// concurrent preference change is rejected before anything is written.
	if _, err := s.migration.StartMigration(ctx, userID, user.PreferredCurrencyCode, currencyCode); err != nil {
		return nil, false, err
	}

	if err := s.userRepo.UpdatePreferredCurrency(ctx, userID, currencyCode); err != nil {
		return nil, false, fmt.Errorf("failed to update preferred currency: %w", err)
	}

	user.PreferredCurrencyCode = currencyCode
	return user, true, nil
}
