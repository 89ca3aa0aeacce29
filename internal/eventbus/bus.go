// Package eventbus provides an in-memory, asynchronous event bus that carries
// inventory events to the notification listener. Events are dispatched
// through a buffered channel and processed by a worker pool. Delivery is
// at-most-once: Publish drops events when the buffer is full, PublishWait
// blocks until there is room, and pending events are lost if the process exits.
package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaharia-lab/stocknotify/internal/metrics"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// EventBus is the interface for publishing events and managing subscribers.
type EventBus interface {
	// Publish enqueues an event with the given type and payload.
	// It never blocks: if the buffer is full, the event is dropped and a warning is logged.
	Publish(eventType string, payload map[string]string)

	// PublishWait enqueues an event, blocking while the buffer is full.
	// It returns ctx.Err() if ctx ends first and ErrClosed after Close.
	PublishWait(ctx context.Context, eventType string, payload map[string]string) error

	// Subscribe registers a listener that will be called for every published event.
	// Subscribe must be called before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting new events and waits for all pending events to be processed.
	Close()
}

// ErrClosed is returned by PublishWait after Close.
var ErrClosed = errors.New("eventbus: closed")

type inMemoryBus struct {
	ch     chan Event
	logger *slog.Logger

	// mu guards closed and the channel send. Publishers hold it for reading
	// while they enqueue, so Close cannot close ch under them.
	mu     sync.RWMutex
	closed bool

	// lmu guards listeners. It is separate from mu so workers keep draining
	// while Close waits for a blocked PublishWait.
	lmu       sync.RWMutex
	listeners []Listener

	wg      sync.WaitGroup
	workers int
}

// New creates a new in-memory EventBus with the specified number of worker goroutines.
// If workers is <= 0, defaultWorkers (3) is used.
func New(workers int, logger *slog.Logger) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &inMemoryBus{
		ch:      make(chan Event, defaultBufferSize),
		workers: workers,
		logger:  logger,
	}
	b.startWorkers()
	return b
}

func (b *inMemoryBus) startWorkers() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
}

// dispatch calls all registered listeners for the given event, recovering
// from listener panics so one bad listener cannot affect the others.
func (b *inMemoryBus) dispatch(e Event) {
	b.lmu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.lmu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("eventbus: listener panicked", "event", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

// Publish enqueues an event. If the buffer is full or the bus is closed the
// event is dropped.
func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("eventbus: closed, dropping event", "event", eventType)
		metrics.EventsDropped.WithLabelValues(eventType).Inc()
		return
	}

	select {
	case b.ch <- e:
	default:
		b.logger.Warn("eventbus: buffer full, dropping event", "event", eventType)
		metrics.EventsDropped.WithLabelValues(eventType).Inc()
	}
}

// PublishWait enqueues an event, waiting for buffer space.
func (b *inMemoryBus) PublishWait(ctx context.Context, eventType string, payload map[string]string) error {
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	select {
	case b.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe adds a listener to receive all future events.
func (b *inMemoryBus) Subscribe(listener Listener) {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the event channel, then waits for all workers to finish.
// It is safe to call more than once.
func (b *inMemoryBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()
	b.wg.Wait()
}
