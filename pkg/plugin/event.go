package plugin

import (
	"context"
	"time"
)

// Event is a message published on the event bus.
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// EventHandler processes an event delivered by the bus.
type EventHandler func(ctx context.Context, event Event)

// EventBus decouples producers of topology changes from their consumers.
type EventBus interface {
	// Publish delivers the event synchronously to every matching handler.
	Publish(ctx context.Context, event Event) error

	// PublishAsync delivers the event on a separate goroutine per handler.
	PublishAsync(ctx context.Context, event Event)

	// Subscribe registers a handler for one topic and returns its
	// unsubscribe function.
	Subscribe(topic string, handler EventHandler) func()

	// SubscribeAll registers a handler for every topic.
	SubscribeAll(handler EventHandler) func()
}
