// Package events fans out change notifications to in-process subscribers.
package events

import (
	"sync"
)

// Buffer is the capacity of every subscriber channel
const Buffer = 64

// Broadcaster manages subscribers and publishes events to them.
type Broadcaster[E any] struct {
	mu          sync.RWMutex
	subscribers map[chan E]struct{}
	closed      bool
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster[E any]() *Broadcaster[E] {
	return &Broadcaster[E]{
		subscribers: make(map[chan E]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster[E]) Subscribe() chan E {
	ch := make(chan E, Buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster[E]) Unsubscribe(ch chan E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish sends an event to all subscribers. Non-blocking: drops events
// for slow consumers.
func (b *Broadcaster[E]) Publish(event E) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Drop event for slow consumer
		}
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster[E]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel; later subscribers get a closed
// channel.
func (b *Broadcaster[E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[chan E]struct{})
}
