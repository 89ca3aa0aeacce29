package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/scheduler"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type countingScanner struct {
	calls   atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
	err     error
}

func (c *countingScanner) ScanLowStock(ctx context.Context) ([]*inventory.Product, error) {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)
	c.calls.Add(1)

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}
	return nil, c.err
}

func TestNew_Validation(t *testing.T) {
	_, err := scheduler.New(scheduler.Config{Interval: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanner is required")

	_, err = scheduler.New(scheduler.Config{Scanner: &countingScanner{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	scanner := &countingScanner{}
	s, err := scheduler.New(scheduler.Config{
		Scanner:  scanner,
		Interval: 50 * time.Millisecond,
		Logger:   newTestLogger(),
	})
	require.NoError(t, err)

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return scanner.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_ScansDoNotOverlap(t *testing.T) {
	scanner := &countingScanner{delay: 120 * time.Millisecond}
	s, err := scheduler.New(scheduler.Config{
		Scanner:  scanner,
		Interval: 20 * time.Millisecond,
		Logger:   newTestLogger(),
	})
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return scanner.calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	assert.False(t, scanner.overlap.Load())
}

func TestScheduler_ScanErrorIsLogged(t *testing.T) {
	scanner := &countingScanner{err: errors.New("db locked")}
	s, err := scheduler.New(scheduler.Config{
		Scanner:  scanner,
		Interval: time.Hour,
		Logger:   newTestLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	assert.NotPanics(t, s.ExportedRunScan)
	assert.Equal(t, int32(1), scanner.calls.Load())
}

func TestScheduler_ScanTimeout(t *testing.T) {
	scanner := &countingScanner{delay: time.Hour}
	s, err := scheduler.New(scheduler.Config{
		Scanner:  scanner,
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Logger:   newTestLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	done := make(chan struct{})
	go func() {
		s.ExportedRunScan()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not honour the timeout")
	}
}
