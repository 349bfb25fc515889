// ABOUTME: Session-scoped boolean flags held in a TTL, size-bounded cache
// ABOUTME: A session's flags vanish after an idle period, like a closed browser tab

package auth

import (
	"container/list"
	"sync"
	"time"
)

// sessionFlags stores the flags set for one session and its list element.
type sessionFlags struct {
	flags    map[string]struct{}
	lastSeen time.Time
	element  *list.Element
}

// FlagStore keeps named boolean flags per session id. A session that is not
// touched for ttl is forgotten along with all of its flags. When more than
// maxSize sessions are tracked, the least recently seen one is evicted.
type FlagStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionFlags
	order    *list.List // session ids, least recently seen at front
	ttl      time.Duration
	maxSize  int
	done     chan struct{}
	closed   bool
}

// NewFlagStore creates a flag store with the given idle TTL and session cap.
// A background goroutine periodically drops idle sessions.
func NewFlagStore(ttl time.Duration, maxSize int) *FlagStore {
	f := &FlagStore{
		sessions: make(map[string]*sessionFlags),
		order:    list.New(),
		ttl:      ttl,
		maxSize:  maxSize,
		done:     make(chan struct{}),
	}
	go f.cleanup()
	return f
}

// IsSet reports whether flag is set for the session. A hit refreshes the
// session's idle timer.
func (f *FlagStore) IsSet(sessionID, flag string) bool {
	if sessionID == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.sessions[sessionID]
	if !ok {
		return false
	}
	if time.Since(entry.lastSeen) >= f.ttl {
		f.removeLocked(sessionID, entry)
		return false
	}

	entry.lastSeen = time.Now()
	f.order.MoveToBack(entry.element)
	_, set := entry.flags[flag]
	return set
}

// Set raises flag for the session. Setting an already-set flag only
// refreshes the idle timer.
func (f *FlagStore) Set(sessionID, flag string) {
	if sessionID == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if entry, exists := f.sessions[sessionID]; exists {
		entry.flags[flag] = struct{}{}
		entry.lastSeen = now
		f.order.MoveToBack(entry.element)
		return
	}

	if len(f.sessions) >= f.maxSize {
		f.evictOldest()
	}

	elem := f.order.PushBack(sessionID)
	f.sessions[sessionID] = &sessionFlags{
		flags:    map[string]struct{}{flag: {}},
		lastSeen: now,
		element:  elem,
	}
}

// Len returns the number of tracked sessions.
func (f *FlagStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// removeLocked must be called with mu held.
func (f *FlagStore) removeLocked(sessionID string, entry *sessionFlags) {
	f.order.Remove(entry.element)
	delete(f.sessions, sessionID)
}

// evictOldest removes the least recently seen session. Must be called with
// mu held.
func (f *FlagStore) evictOldest() {
	front := f.order.Front()
	if front == nil {
		return
	}

	id, _ := front.Value.(string)
	f.order.Remove(front)
	delete(f.sessions, id)
}

// cleanup runs in a background goroutine, periodically removing idle sessions.
func (f *FlagStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.runCleanup()
		case <-f.done:
			return
		}
	}
}

// runCleanup removes all idle sessions.
func (f *FlagStore) runCleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for id, entry := range f.sessions {
		if now.Sub(entry.lastSeen) >= f.ttl {
			f.removeLocked(id, entry)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (f *FlagStore) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		close(f.done)
		f.closed = true
	}
}
