package tracker

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const asyncRequestContextKey contextKey = "async_request"

// WithAsyncRequest marks ctx as belonging to an asynchronous in-page request.
// Reports are never sent from such requests.
func WithAsyncRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, asyncRequestContextKey, true)
}

func IsAsyncRequest(ctx context.Context) bool {
	async, _ := ctx.Value(asyncRequestContextKey).(bool)
	return async
}
