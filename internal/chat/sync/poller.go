// Package sync drives periodic refresh of chat views. There is no push
// channel; clients and background consumers converge on fresh state by
// polling on a fixed cadence.
package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FetchFunc pulls the latest state once. Errors are logged, never fatal; the
// next tick retries.
type FetchFunc func(ctx context.Context) error

// Poller invokes a fetch function on a fixed interval until stopped. It is
// leak-free: Run returns when the context is cancelled or Stop is called,
// and Stop is safe to call more than once.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(interval time.Duration, fetch FetchFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		logger:   logger,
		stopped:  make(chan struct{}),
	}
}

// Run blocks, fetching once per interval. The first fetch happens after one
// full interval, not immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case <-ticker.C:
			if err := p.fetch(ctx); err != nil {
				p.logger.WarnContext(ctx, "chat poll failed", "error", err)
			}
		}
	}
}

// Stop terminates Run.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
}
