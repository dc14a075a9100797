package models

import "time"

// SyncStatus is the durable sync state stored with the account.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusTimedOut  SyncStatus = "timed_out"
)

// Account is the encrypted provider credential record, one per user.
// Ciphertext is produced by cryptox.Vault for UserID and is never stored
// in any other form.
type Account struct {
	UserID          string
	Ciphertext      string
	Marketplace     string
	TokensExpiresAt *time.Time
	SyncStatus      SyncStatus
	LastSync        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
