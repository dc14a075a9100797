package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/server/models"
)

// Repository stores the encrypted provider credential record of each user.
type Repository interface {
	// Upsert writes the record keyed by UserID and resets its sync status
	// to the value carried by the record.
	Upsert(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, userID string) (*models.Account, error)
	// UpdateSyncStatus sets the durable sync status; lastSync is only
	// written when non-nil.
	UpdateSyncStatus(ctx context.Context, userID string, status models.SyncStatus, lastSync *time.Time) error
}
