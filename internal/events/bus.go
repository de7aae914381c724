// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package events

import (
	"sync"
	"sync/atomic"

	"github.com/qol-tools/qol-tray/internal/observability"
)

// DefaultCapacity is the per-subscriber backlog kept before the oldest
// unread events are evicted.
const DefaultCapacity = 64

// Bus is a lossy multi-subscriber broadcast. Publish never blocks on a slow
// subscriber: when a subscriber's backlog is full its oldest unread event is
// evicted to make room.
type Bus struct {
	mu       sync.Mutex
	capacity int
	subs     map[*Subscription]struct{}
	metrics  *observability.Metrics
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithCapacity sets the per-subscriber backlog. Values below 1 are ignored.
func WithCapacity(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithMetrics records publishes and evictions.
func WithMetrics(m *observability.Metrics) BusOption {
	return func(b *Bus) {
		b.metrics = m
	}
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		capacity: DefaultCapacity,
		subs:     make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription receives every event published after it was created, in publish order.
type Subscription struct {
	bus    *Bus
	ch     chan Event
	lagged atomic.Uint64
}

// C returns the receive channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Lagged returns how many events this subscriber missed by falling behind.
func (s *Subscription) Lagged() uint64 {
	return s.lagged.Load()
}

// Close detaches the subscription from the bus and closes its channel.
// Closing twice is a no-op.
func (s *Subscription) Close() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Subscribe attaches a new subscriber.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Subscription{bus: b, ch: make(chan Event, b.capacity)}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers e to every current subscriber and returns how many there were.
// With no subscribers the event is dropped.
func (b *Bus) Publish(e Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.EventPublished()
	for s := range b.subs {
		b.deliver(s, e)
	}
	return len(b.subs)
}

// deliver runs under b.mu, so publishers are the only senders and one
// eviction always frees a slot.
func (b *Bus) deliver(s *Subscription, e Event) {
	select {
	case s.ch <- e:
		return
	default:
	}

	select {
	case <-s.ch:
		s.lagged.Add(1)
		b.metrics.EventDropped()
	default:
	}

	select {
	case s.ch <- e:
	default:
		s.lagged.Add(1)
		b.metrics.EventDropped()
	}
}

// SubscriberCount returns the number of attached subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
