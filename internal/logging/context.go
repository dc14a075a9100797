package logging

import "context"

type ctxKey struct{}

// RequestIDKey is the attribute name SlogLogger uses for the request id.
const RequestIDKey = "request_id"

// WithRequestID returns a copy of ctx carrying id. Every line logged through
// a SlogLogger with the returned context is tagged with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
