// ABOUTME: Session context for tracking the browser session through request handlers
// ABOUTME: Provides WithSession/SessionFromContext for propagating the session id

package auth

import (
	"context"
)

// sessionContextKey is the key type for storing the session id in context.Context.
type sessionContextKey struct{}

// WithSession returns a new context with the session id attached.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}

// SessionFromContext retrieves the session id, returning "" if not present.
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey{}).(string)
	return id
}
