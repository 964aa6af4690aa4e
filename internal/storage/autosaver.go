package storage

import (
	"context"
	"time"

	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/platform/logger"
)

// SnapshotWriter is the slice of Store the autosaver needs.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// Autosaver debounces snapshot writes. The first notification opens a write
// window; everything arriving inside it collapses into one write of the
// latest state when the window closes. The window is never extended, so a
// steady action stream (the scheduler ticks faster than the debounce) still
// flushes once per window instead of deferring forever. A failed write keeps
// the state pending and retries after another interval instead of surfacing
// to gameplay.
type Autosaver struct {
	store          SnapshotWriter
	catalogVersion string
	debounce       time.Duration
	logger         *logger.Logger

	pending  chan *state.GameState
	stopChan chan struct{}
}

// NewAutosaver creates an autosaver writing through the given store.
func NewAutosaver(store SnapshotWriter, catalogVersion string, debounce time.Duration, log *logger.Logger) *Autosaver {
	return &Autosaver{
		store:          store,
		catalogVersion: catalogVersion,
		debounce:       debounce,
		logger:         log,
		pending:        make(chan *state.GameState, 1),
		stopChan:       make(chan struct{}),
	}
}

// Notify hands the autosaver a new state to persist. Never blocks: a state
// already waiting is replaced by the newer one. Single producer (the session
// goroutine).
func (a *Autosaver) Notify(st *state.GameState) {
	select {
	case a.pending <- st:
	default:
		select {
		case <-a.pending:
		default:
		}
		a.pending <- st
	}
}

// Run drains notifications until the context is cancelled, then makes one
// final flush so a clean shutdown never loses the tail of a session. Call in
// a goroutine.
func (a *Autosaver) Run(ctx context.Context) {
	a.logger.Info("Autosaver started.")

	timer := time.NewTimer(a.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false
	var latest *state.GameState

	for {
		select {
		case <-ctx.Done():
			a.finalFlush(latest)
			return
		case <-a.stopChan:
			a.finalFlush(latest)
			return
		case st := <-a.pending:
			latest = st
			// Only the first notification arms the window. Resetting a
			// pending timer here would starve the flush whenever
			// notifications arrive faster than the debounce.
			if !armed {
				timer.Reset(a.debounce)
				armed = true
			}
		case <-timer.C:
			armed = false
			if latest == nil {
				continue
			}
			if a.flush(ctx, latest) {
				latest = nil
			} else {
				timer.Reset(a.debounce)
				armed = true
			}
		}
	}
}

// Stop shuts the autosaver down, flushing any pending state.
func (a *Autosaver) Stop() {
	close(a.stopChan)
}

func (a *Autosaver) flush(ctx context.Context, st *state.GameState) bool {
	snap := Encode(st, a.catalogVersion, time.Now())
	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		a.logger.Error("Autosave failed, will retry: " + err.Error())
		return false
	}
	return true
}

func (a *Autosaver) finalFlush(latest *state.GameState) {
	select {
	case st := <-a.pending:
		latest = st
	default:
	}
	if latest != nil {
		// Best effort with a short independent deadline; the parent context
		// is already cancelled at this point.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a.flush(ctx, latest)
	}
	a.logger.Info("Autosaver stopped.")
}
