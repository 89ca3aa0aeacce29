package service

import "context"

// EventPublisher is the interface for publishing application events.
// Services use this interface to emit events without depending on a concrete
// event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
	// PublishWait blocks until the event is accepted or ctx ends.
	PublishWait(ctx context.Context, eventType string, payload map[string]string) error
}
