// Package logging is the structured logging facade used by every shelfsync
// component. SlogLogger backs it with log/slog; the handler picks json or
// console output, and a request id carried in the context is attached to
// each record.
package logging

import "context"

// Logger takes a message and alternating key/value pairs:
//
//	log.Warn(ctx, "token refresh failed", "user_id", id, "error", err)
//
// Secrets (passwords, tokens, codes) are never passed as values.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
