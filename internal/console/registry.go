// ABOUTME: One console draft per browser session, dropped after idle timeout
// ABOUTME: Lets an operator switch tabs and pages without losing the draft

package console

import (
	"context"
	"time"

	"github.com/lavriel789-crypto/luxriel/internal/hub"
)

// Registry keeps each session's open console.
type Registry struct {
	store    Publisher
	opts     Options
	sessions *hub.Registry[*Console]
}

// NewRegistry creates a registry whose drafts expire after idle.
func NewRegistry(store Publisher, opts Options, idle time.Duration) *Registry {
	return &Registry{
		store:    store,
		opts:     opts,
		sessions: hub.New[*Console](idle, nil),
	}
}

// Open returns the session's console, opening a fresh draft if none exists.
func (r *Registry) Open(ctx context.Context, sessionID string) *Console {
	c, _ := r.sessions.GetOrCreate(sessionID, func() (*Console, error) {
		return Open(ctx, r.store, r.opts), nil
	})
	return c
}

// Discard drops the session's draft.
func (r *Registry) Discard(sessionID string) {
	r.sessions.Remove(sessionID)
}

// Close drops every draft and stops cleanup.
func (r *Registry) Close() {
	r.sessions.Close()
}
