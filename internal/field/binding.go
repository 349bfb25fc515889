// ABOUTME: Mounted field bindings that re-read the store on every change
// ABOUTME: Pull-based: a notification triggers a full reload and re-resolve

package field

import (
	"context"
	"sync"

	"github.com/lavriel789-crypto/luxriel/internal/content"
)

// Binding holds the live effective value of one mounted field.
type Binding[T comparable] struct {
	mu      sync.RWMutex
	value   T
	changed chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// Mount binds the text field to src. The value is resolved immediately and
// again after every change notification until ctx ends or Close is called.
func (f Text) Mount(ctx context.Context, src Source) *Binding[string] {
	return mount(ctx, src, f.Resolve)
}

// Mount binds the image field to src.
func (f Image) Mount(ctx context.Context, src Source) *Binding[ImageValue] {
	return mount(ctx, src, f.Resolve)
}

func mount[T comparable](ctx context.Context, src Source, resolve func(tree content.Tree) T) *Binding[T] {
	ctx, cancel := context.WithCancel(ctx)
	b := &Binding[T]{
		changed: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Subscribe before the first read so no write can slip between them.
	ch, subID := src.Subscribe(ctx)
	b.value = resolve(src.Load(ctx))

	go func() {
		defer close(b.done)
		defer src.Unsubscribe(subID)
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
				b.set(resolve(src.Load(ctx)))
			case <-ctx.Done():
				return
			}
		}
	}()

	return b
}

// Value returns the current effective value.
func (b *Binding[T]) Value() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Changed receives a signal after each re-read that changed the value.
// Signals coalesce: one pending signal stands for any number of changes.
func (b *Binding[T]) Changed() <-chan struct{} {
	return b.changed
}

// Done is closed once the binding stops reading, either after Close or when
// the source ends its subscription.
func (b *Binding[T]) Done() <-chan struct{} {
	return b.done
}

// Close unmounts the binding and waits for its reader to stop.
func (b *Binding[T]) Close() {
	b.cancel()
	<-b.done
}

func (b *Binding[T]) set(v T) {
	b.mu.Lock()
	same := b.value == v
	b.value = v
	b.mu.Unlock()

	if same {
		return
	}
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
