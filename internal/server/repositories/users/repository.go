package users

import (
	"context"

	"github.com/dmitrijs2005/shelfsync/internal/server/models"
)

// Repository stores local user identities.
type Repository interface {
	// EnsureExists returns the user for (provider, providerUserID), creating
	// it with displayName when absent. Concurrent calls converge on one row.
	EnsureExists(ctx context.Context, provider, providerUserID, displayName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
