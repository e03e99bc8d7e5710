package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock advances the world time by one game tick and returns the new tick.
type Clock interface {
	Advance() int64
}

// Runner drives the manager from a wall-clock ticker.
type Runner struct {
	manager  *Manager
	clock    Clock
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRunner creates a runner firing every interval.
func NewRunner(manager *Manager, clock Clock, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Runner{
		manager:  manager,
		clock:    clock,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the tick loop (blocks until ctx is canceled or Stop is called).
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("spawn runner started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("spawn runner stopping")
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("spawn runner stopped")
			return nil

		case <-ticker.C:
			r.Step(ctx)
		}
	}
}

// Step advances the clock once and runs one manager tick.
func (r *Runner) Step(ctx context.Context) TickReport {
	tick := r.clock.Advance()
	report := r.manager.Tick(ctx, tick)
	if n := report.Spawned(); n > 0 {
		slog.Debug("tick spawned entities", "tick", tick, "count", n)
	}
	return report
}

// Stop stops the tick loop. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RunSaveLoop persists the manager every interval until ctx is canceled.
// The final save is left to Manager.Shutdown.
func (r *Runner) RunSaveLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("autosave started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.manager.Save(ctx); err != nil {
				slog.Error("autosave failed", "error", err)
				continue
			}
			slog.Debug("autosave complete", "regions", r.manager.Store().Len())
		}
	}
}
