// ABOUTME: Per-browser-session registry of live objects with idle cleanup
// ABOUTME: Holds console drafts and assistant sessions keyed by session id

package hub

import (
	"context"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an entry may go unused before cleanup.
const DefaultIdleTimeout = 30 * time.Minute

// entry is one registered value and when it was last used.
type entry[T any] struct {
	value    T
	lastUsed time.Time
}

// Registry keeps one T per key and closes entries that sit idle.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	idle    time.Duration
	onEvict func(T)
	cancel  context.CancelFunc
}

// New creates a registry. onEvict, when non-nil, is called for every value
// removed by cleanup, Remove, or Close.
func New[T any](idle time.Duration, onEvict func(T)) *Registry[T] {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry[T]{
		entries: make(map[string]*entry[T]),
		idle:    idle,
		onEvict: onEvict,
		cancel:  cancel,
	}
	go r.cleanupLoop(ctx)
	return r
}

// GetOrCreate returns the value for key, creating it with create when absent.
// create runs under the registry lock and must not call back into it.
func (r *Registry[T]) GetOrCreate(key string, create func() (T, error)) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		e.lastUsed = time.Now()
		return e.value, nil
	}

	v, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	r.entries[key] = &entry[T]{value: v, lastUsed: time.Now()}
	return v, nil
}

// Get returns the value for key if present and marks it used.
func (r *Registry[T]) Get(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastUsed = time.Now()
	return e.value, true
}

// Remove evicts key.
func (r *Registry[T]) Remove(key string) {
	r.mu.Lock()
	e, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	if ok {
		r.evict(e.value)
	}
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// cleanupLoop periodically removes stale entries
func (r *Registry[T]) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanupStale()
		}
	}
}

// cleanupStale removes entries idle for longer than the idle timeout.
func (r *Registry[T]) cleanupStale() {
	r.mu.Lock()
	now := time.Now()
	var stale []T
	for key, e := range r.entries {
		if now.Sub(e.lastUsed) > r.idle {
			stale = append(stale, e.value)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	for _, v := range stale {
		r.evict(v)
	}
}

func (r *Registry[T]) evict(v T) {
	if r.onEvict != nil {
		r.onEvict(v)
	}
}

// Close evicts every entry and stops the cleanup goroutine.
func (r *Registry[T]) Close() {
	r.cancel()

	r.mu.Lock()
	all := make([]T, 0, len(r.entries))
	for key, e := range r.entries {
		all = append(all, e.value)
		delete(r.entries, key)
	}
	r.mu.Unlock()

	for _, v := range all {
		r.evict(v)
	}
}
