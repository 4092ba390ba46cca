package domain

import "time"

// MigrationStatus is the lifecycle state of a currency migration.
// pending -> in_progress -> {completed | failed}; terminal states never change.
type MigrationStatus string

const (
	MigrationStatusPending    MigrationStatus = "pending"
	MigrationStatusInProgress MigrationStatus = "in_progress"
	MigrationStatusCompleted  MigrationStatus = "completed"
	MigrationStatusFailed     MigrationStatus = "failed"
)

// IsTerminal reports whether no further transition can occur from this status.
func (s MigrationStatus) IsTerminal() bool {
	return s == MigrationStatusCompleted || s == MigrationStatusFailed
}

// CurrencyMigration is the durable progress record of one re-denomination run.
// Rows are never deleted; they form an audit trail of preference changes.
// At most one non-terminal record exists per user at a time.
type CurrencyMigration struct {
	MigrationID       string          `json:"migrationID"`
	UserID            string          `json:"userID"`
	FromCurrencyCode  string          `json:"fromCurrencyCode"`
	ToCurrencyCode    string          `json:"toCurrencyCode"`
	Status            MigrationStatus `json:"status"`
	TotalEntities     int64           `json:"totalEntities"`
	ProcessedEntities int64           `json:"processedEntities"`
	CurrentStep       string          `json:"currentStep"`
	StartedAt         time.Time       `json:"startedAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	ErrorMessage      string          `json:"errorMessage,omitempty"`
}
