package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollerFetchesOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := New(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 },
		time.Second, time.Millisecond)

	p.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(time.Millisecond, func(ctx context.Context) error { return nil }, nil)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestPollerStopIdempotent(t *testing.T) {
	p := New(time.Millisecond, func(ctx context.Context) error { return nil }, nil)
	p.Stop()
	p.Stop() // must not panic

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for an already-stopped poller")
	}
}

func TestPollerKeepsGoingAfterFetchError(t *testing.T) {
	var calls atomic.Int32
	p := New(2*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return context.DeadlineExceeded
	}, nil)

	go p.Run(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 },
		time.Second, time.Millisecond)
}
