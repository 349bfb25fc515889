// ABOUTME: In-memory fan-out broadcaster keyed by topic
// ABOUTME: Delivers values to every subscriber of a topic without blocking the publisher

package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultBufferSize is the channel buffer for each subscriber.
	DefaultBufferSize = 64
)

// Broadcaster provides in-memory pub/sub. Subscribers register for a topic
// and receive every value published to it while subscribed.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan T // topic -> subID -> ch
	bufferSize  int
	closed      bool
	logger      *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default.
func New[T any](logger *slog.Logger) *Broadcaster[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster[T]{
		subscribers: make(map[string]map[string]chan T),
		bufferSize:  DefaultBufferSize,
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for the given topic. Returns a channel
// that receives values and a subscription ID for later unsubscription. The
// subscription is automatically cleaned up when ctx is cancelled. After
// Close, the returned channel is already closed.
func (b *Broadcaster[T]) Subscribe(ctx context.Context, topic string) (<-chan T, string) {
	subID := uuid.New().String()
	ch := make(chan T, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	if _, ok := b.subscribers[topic]; !ok {
		b.subscribers[topic] = make(map[string]chan T)
	}
	b.subscribers[topic][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "topic", topic, "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(topic, subID)
	}()

	return ch, subID
}

// Publish sends v to all subscribers of topic.
// Non-blocking: values are dropped for subscribers whose channels are full.
func (b *Broadcaster[T]) Publish(topic string, v T) {
	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send. The sends never block.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers[topic] {
		select {
		case ch <- v:
		default:
			b.logger.Debug("dropped value for slow subscriber", "topic", topic, "sub_id", id)
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Broadcaster[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(topic, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[topic]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(b.subscribers, topic)
	}

	b.logger.Debug("subscriber removed", "topic", topic, "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, topic)
	}
	b.closed = true

	b.logger.Debug("broadcaster closed")
}
