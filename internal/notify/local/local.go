// Package local is an in-process change feed. Publish calls every handler
// subscribed to the table synchronously, in registration order.
package local

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vbonduro/infratrack/internal/notify"
)

type subscription struct {
	id      uint64
	handler func()
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

func (b *Bus) Publish(_ context.Context, table string) error {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.subs[table]))
	for _, s := range b.subs[table] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, table string, fn func()) (notify.Subscription, error) {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.subs[table] = append(b.subs[table], subscription{id: id, handler: fn})
	b.mu.Unlock()

	return notify.SubscriptionFunc(func() error {
		b.unsubscribe(table, id)
		return nil
	}), nil
}

func (b *Bus) unsubscribe(table string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[table]
	for i, s := range subs {
		if s.id == id {
			b.subs[table] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// SubscriberCount reports how many handlers are registered for table.
func (b *Bus) SubscriberCount(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}
