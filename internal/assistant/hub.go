// ABOUTME: Keeps one assistant session per browser session
// ABOUTME: Idle sessions are closed by the shared registry cleanup loop

package assistant

import (
	"github.com/lavriel789-crypto/luxriel/internal/hub"
)

// Hub hands out sessions by browser session id.
type Hub struct {
	gen      Generator
	opts     Options
	sessions *hub.Registry[*Session]
}

// NewHub creates a hub whose sessions all share gen.
func NewHub(gen Generator, opts Options) *Hub {
	return &Hub{
		gen:      gen,
		opts:     opts,
		sessions: hub.New(opts.IdleTimeout, (*Session).Close),
	}
}

// Session returns the session for id, creating it on first use.
func (h *Hub) Session(id string) *Session {
	s, _ := h.sessions.GetOrCreate(id, func() (*Session, error) {
		return NewSession(id, h.gen, h.opts), nil
	})
	return s
}

// Lookup returns an existing session without creating one.
func (h *Hub) Lookup(id string) (*Session, bool) {
	return h.sessions.Get(id)
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	return h.sessions.Len()
}

// Close closes every session.
func (h *Hub) Close() {
	h.sessions.Close()
}
