package session

import (
	"context"
	"time"

	"github.com/avidal-games/complot/internal/engine"
	"github.com/avidal-games/complot/internal/platform/logger"
	"github.com/avidal-games/complot/internal/platform/metrics"
)

// Scheduler is the heartbeat: it dispatches a TICK action at a fixed cadence.
// DeltaTime is measured from the injected clock, not assumed from the
// interval, so a stalled or suspended process accrues the elapsed time on the
// next fire instead of losing it.
type Scheduler struct {
	session  *Session
	clock    engine.Clock
	interval time.Duration
	logger   *logger.Logger
	stopChan chan struct{}
}

// NewScheduler creates a scheduler over a running session.
func NewScheduler(s *Session, clock engine.Clock, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		session:  s,
		clock:    clock,
		interval: interval,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Run emits ticks until the context is cancelled. Call in a goroutine.
// Dispatch blocks until the session applies the tick, so ticks never overlap
// and never pile up behind a slow transition.
func (sc *Scheduler) Run(ctx context.Context) {
	sc.logger.Info("Scheduler started.")
	last := sc.clock.Now()

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sc.logger.Info("Scheduler stopped by context.")
			return
		case <-sc.stopChan:
			sc.logger.Info("Scheduler stopped manually.")
			return
		case <-ticker.C:
			now := sc.clock.Now()
			dt := now.Sub(last).Seconds()
			last = now
			sc.session.Dispatch(engine.Action{Type: engine.ActionTick, DeltaTime: dt})
			metrics.Get().RecordTick()
		}
	}
}

// Stop gracefully stops the scheduler.
func (sc *Scheduler) Stop() {
	close(sc.stopChan)
}
