package dto

import (
	"time"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// MigrationStatusResponse is the polling view of a currency migration.
type MigrationStatusResponse struct {
	MigrationID       string     `json:"migrationID"`
	FromCurrencyCode  string     `json:"fromCurrencyCode"`
	ToCurrencyCode    string     `json:"toCurrencyCode"`
	Status            string     `json:"status"`
	TotalEntities     int64      `json:"totalEntities"`
	ProcessedEntities int64      `json:"processedEntities"`
	CurrentStep       string     `json:"currentStep,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
}

// ToMigrationStatusResponse converts a domain.CurrencyMigration to its
// response DTO.
func ToMigrationStatusResponse(migration *domain.CurrencyMigration) MigrationStatusResponse {
	return MigrationStatusResponse{
		MigrationID:       migration.MigrationID,
		FromCurrencyCode:  migration.FromCurrencyCode,
		ToCurrencyCode:    migration.ToCurrencyCode,
		Status:            string(migration.Status),
		TotalEntities:     migration.TotalEntities,
		ProcessedEntities: migration.ProcessedEntities,
		CurrentStep:       migration.CurrentStep,
		StartedAt:         migration.StartedAt,
		CompletedAt:       migration.CompletedAt,
		ErrorMessage:      migration.ErrorMessage,
	}
}
