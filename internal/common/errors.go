// Package common defines shared constants and sentinel errors used across
// the shelfsync server and CLI. Callers should use errors.Is to match these
// values; wrapped variants carry additional context.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrStorageFailure = errors.New("storage failure")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Provider login errors.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrChallengeRequired   = errors.New("verification code required")
	ErrChallengeExpired    = errors.New("verification session expired")
	ErrChallengeNotFound   = errors.New("verification session not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrAuthFailed          = errors.New("authentication failed")

	// Credential vault errors.
	ErrDecryptionFailure = errors.New("decryption failure")
	ErrMissingMasterKey  = errors.New("master key is not configured")

	// Sync errors.
	ErrSyncTimeout        = errors.New("sync timed out")
	ErrSyncAlreadyRunning = errors.New("sync already in progress")

	// Session token errors.
	ErrTokenInvalidOrExpired = errors.New("session token invalid or expired")
)
