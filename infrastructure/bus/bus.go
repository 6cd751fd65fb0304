// Package bus provides the notification transports the game writes to:
// an in-process publish/subscribe bus for same-process surfaces, and a
// websocket hub for display and buzzer clients in other processes.
package bus

import (
	"sort"
	"sync"

	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

var _ ports.EventBus = (*InProcessBus)(nil)

type subscription struct {
	handler func(domain.Event)
	kinds   map[domain.EventKind]struct{} // empty means every kind
}

// InProcessBus fans events out to same-process subscribers synchronously,
// in registration order. Handlers run on the publisher's goroutine,
// preserving the event ordering that buzz-in arbitration relies on.
// Safe for concurrent use.
type InProcessBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus() *InProcessBus {
	return &InProcessBus{subs: make(map[int]subscription)}
}

// Publish implements EventBus.
func (b *InProcessBus) Publish(event domain.Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// Registration order, so displays render changes in commit order.
	sort.Ints(ids)
	handlers := make([]func(domain.Event), 0, len(ids))
	for _, id := range ids {
		sub := b.subs[id]
		if len(sub.kinds) > 0 {
			if _, ok := sub.kinds[event.Kind()]; !ok {
				continue
			}
		}
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// Subscribe implements EventBus.
func (b *InProcessBus) Subscribe(handler func(domain.Event), kinds ...domain.EventKind) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	kindSet := make(map[domain.EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		kindSet[k] = struct{}{}
	}
	b.subs[id] = subscription{handler: handler, kinds: kindSet}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}
