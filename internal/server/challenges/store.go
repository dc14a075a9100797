// Package challenges keeps pending one-time-code login attempts between the
// password step and the code step.
package challenges

import (
	"context"
	"time"
)

// Challenge holds what is needed to replay a login once the user supplies
// the verification code. It is single-use.
type Challenge struct {
	ID          string
	Username    string
	Password    string
	Marketplace string
	UserID      string
	CreatedAt   time.Time
}

// Store is a process-local registry of pending challenges.
type Store interface {
	// Create assigns ID and CreatedAt and stores the challenge.
	Create(ctx context.Context, c Challenge) (*Challenge, error)
	// Get returns the challenge. Unknown ids yield common.ErrChallengeNotFound;
	// entries older than the TTL are removed and yield common.ErrChallengeExpired.
	Get(ctx context.Context, id string) (*Challenge, error)
	// Take is Get that also removes a live challenge in the same step, so at
	// most one caller ever receives it.
	Take(ctx context.Context, id string) (*Challenge, error)
	Delete(ctx context.Context, id string) error
}
