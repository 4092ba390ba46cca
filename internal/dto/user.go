package dto

import (
	"time"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// UpdatePreferredCurrencyRequest defines the structure for changing a user's
// display currency.
type UpdatePreferredCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,currency"`
}

// UserResponse defines the structure for API responses containing user details.
type UserResponse struct {
	UserID                string    `json:"userID"`
	Name                  string    `json:"name"`
	PreferredCurrencyCode string    `json:"preferredCurrencyCode"`
	CreatedAt             time.Time `json:"createdAt"`
	LastUpdatedAt         time.Time `json:"lastUpdatedAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:                user.UserID,
		Name:                  user.Name,
		PreferredCurrencyCode: user.PreferredCurrencyCode,
		CreatedAt:             user.CreatedAt,
		LastUpdatedAt:         user.LastUpdatedAt,
	}
}

// PreferredCurrencyResponse reports the outcome of a preference change.
// MigrationStarted is false when the requested currency matched the existing
// preference.
type PreferredCurrencyResponse struct {
	PreferredCurrency string `json:"preferredCurrency"`
	MigrationStarted  bool   `json:"migrationStarted"`
}
