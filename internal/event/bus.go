// Package event provides the in-process event bus that carries topology,
// canvas, and simulation notifications between components.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/danmudi/netlab/pkg/plugin"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ plugin.EventBus = (*Bus)(nil)

type subscription struct {
	id      uint64
	handler plugin.EventHandler
}

// Bus is a topic-based publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	topics   map[string][]subscription
	wildcard []subscription
	nextID   uint64
	logger   *zap.Logger
}

// NewBus creates an empty event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// Publish delivers event synchronously to topic subscribers, then to
// wildcard subscribers. A panicking handler is logged and skipped.
func (b *Bus) Publish(ctx context.Context, event plugin.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	for _, h := range b.handlers(event.Topic) {
		b.invoke(ctx, h, event)
	}
	return nil
}

// PublishAsync delivers event to each handler on its own goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event plugin.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	for _, h := range b.handlers(event.Topic) {
		go b.invoke(ctx, h, event)
	}
}

// Subscribe registers handler for topic.
func (b *Bus) Subscribe(topic string, handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = remove(b.topics[topic], id)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
	}
}

// SubscribeAll registers handler for every topic.
func (b *Bus) SubscribeAll(handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.wildcard = append(b.wildcard, subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.wildcard = remove(b.wildcard, id)
	}
}

// handlers snapshots the handlers for topic so delivery happens without
// holding the lock. Handlers may publish or subscribe in turn.
func (b *Bus) handlers(topic string) []plugin.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.topics[topic]
	out := make([]plugin.EventHandler, 0, len(subs)+len(b.wildcard))
	for _, s := range subs {
		out = append(out, s.handler)
	}
	for _, s := range b.wildcard {
		out = append(out, s.handler)
	}
	return out
}

func (b *Bus) invoke(ctx context.Context, h plugin.EventHandler, event plugin.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.String("source", event.Source),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, event)
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
