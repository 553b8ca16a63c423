// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"sync"

	"github.com/adxyz/admarket/pkg/log"
)

// Bus fans marketplace events out to subscribers and retains an append-only
// history. Publish never fails and never blocks: state has already committed
// by the time an event is published, so a slow subscriber can only lose its
// own copy, not stall the marketplace.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	nextID  int
	history []Event
	log     log.Logger
}

// NewBus creates an event bus
func NewBus(logger log.Logger) *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
		log:  logger,
	}
}

// Publish appends the event to the history and delivers it to every
// subscriber whose buffer has room. Slow subscribers are skipped.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, e)

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Warn("subscriber buffer full, dropping event",
				"subscriber", id, "event", e.Type())
		}
	}
}

// Subscribe registers a new subscriber with the given buffer size and
// returns its channel along with an unsubscribe function.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// History returns a copy of all events published so far, in commit order.
func (b *Bus) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}
