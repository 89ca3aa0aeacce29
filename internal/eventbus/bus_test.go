package eventbus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/stocknotify/internal/eventbus"
)

func TestPublishAndReceive(t *testing.T) {
	bus := eventbus.New(2, nil)
	defer bus.Close()

	var received []eventbus.Event
	var mu sync.Mutex

	bus.Subscribe(func(e eventbus.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish(eventbus.EventProductRestocked, map[string]string{"name": "Widget"})

	// Give workers time to process
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, eventbus.EventProductRestocked, received[0].Type)
	assert.Equal(t, "Widget", received[0].Payload["name"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestMultipleListeners(t *testing.T) {
	bus := eventbus.New(2, nil)
	defer bus.Close()

	var count int32

	for i := 0; i < 3; i++ {
		bus.Subscribe(func(_ eventbus.Event) {
			atomic.AddInt32(&count, 1)
		})
	}

	bus.Publish("multi", nil)
	time.Sleep(50 * time.Millisecond)

	assert.EqualValues(t, 3, atomic.LoadInt32(&count))
}

func TestListenerPanicDoesNotCrash(t *testing.T) {
	bus := eventbus.New(1, nil)
	defer bus.Close()

	var goodCalled int32

	bus.Subscribe(func(_ eventbus.Event) {
		panic("intentional panic in listener")
	})
	bus.Subscribe(func(_ eventbus.Event) {
		atomic.AddInt32(&goodCalled, 1)
	})

	bus.Publish("panic.event", nil)
	time.Sleep(50 * time.Millisecond)

	// The second listener should still have been called.
	assert.EqualValues(t, 1, atomic.LoadInt32(&goodCalled))
}

func TestClose(t *testing.T) {
	bus := eventbus.New(2, nil)

	var count int32
	bus.Subscribe(func(_ eventbus.Event) {
		atomic.AddInt32(&count, 1)
	})

	for i := 0; i < 5; i++ {
		bus.Publish("evt", nil)
	}

	// Close waits for all workers to finish processing.
	bus.Close()

	assert.EqualValues(t, 5, atomic.LoadInt32(&count))
}

func TestDefaultWorkers(t *testing.T) {
	// workers <= 0 should use default without panicking.
	bus := eventbus.New(0, nil)
	require.NotNil(t, bus)
	bus.Close()
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	bus := eventbus.New(1, nil)

	var count int32
	bus.Subscribe(func(_ eventbus.Event) {
		atomic.AddInt32(&count, 1)
	})
	bus.Close()

	// Must not panic on a closed channel.
	bus.Publish(eventbus.EventProductLowStock, nil)
	bus.Close()

	assert.EqualValues(t, 0, atomic.LoadInt32(&count))
}

func TestPublishWaitBeyondBuffer(t *testing.T) {
	bus := eventbus.New(0, nil)

	// A serialized, slow listener keeps the buffer full.
	var (
		mu      sync.Mutex
		handled int
	)
	bus.Subscribe(func(_ eventbus.Event) {
		mu.Lock()
		defer mu.Unlock()
		time.Sleep(time.Millisecond)
		handled++
	})

	const total = 150
	for i := 0; i < total; i++ {
		require.NoError(t, bus.PublishWait(context.Background(), eventbus.EventProductLowStock, nil))
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, total, handled)
}

func TestPublishWaitHonorsContext(t *testing.T) {
	bus := eventbus.New(1, nil)
	release := make(chan struct{})
	bus.Subscribe(func(_ eventbus.Event) { <-release })
	defer func() {
		close(release)
		bus.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var err error
	// One event is held by the worker; the rest fill the buffer until ctx ends.
	for i := 0; i < 1000 && err == nil; i++ {
		err = bus.PublishWait(ctx, eventbus.EventProductLowStock, nil)
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublishWaitAfterClose(t *testing.T) {
	bus := eventbus.New(1, nil)
	bus.Close()

	err := bus.PublishWait(context.Background(), eventbus.EventProductLowStock, nil)
	assert.ErrorIs(t, err, eventbus.ErrClosed)
}
