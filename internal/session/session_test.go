package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
	"github.com/avidal-games/complot/internal/journal"
	"github.com/avidal-games/complot/internal/platform/logger"
)

func startSession(t *testing.T, jrnl *journal.Journal) (*Session, context.CancelFunc) {
	t.Helper()
	eng := engine.New(catalog.Default(), logger.NewLogger())
	s := New(eng, eng.NewGame(), engine.NewSeededRNG(1), engine.SystemClock(), jrnl, logger.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(cancel)
	return s, cancel
}

func TestDispatchSerializesConcurrentActions(t *testing.T) {
	// Setup
	s, _ := startSession(t, nil)

	// Act: 5 goroutines hammering the session
	var wg sync.WaitGroup
	for g := 0; g < 5; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s.Dispatch(engine.Action{Type: engine.ActionManipulate})
			}
		}()
	}
	wg.Wait()

	// Assert: no lost updates
	st := s.State()
	if got := st.Counter(state.CounterManipulate); got != 100 {
		t.Errorf("Expected 100 serialized manipulations, got %d", got)
	}
	if st.Ledger.Balance(ledger.ManipulationPoints) <= 0 {
		t.Error("Expected accumulated points")
	}
}

func TestAppliedActionsAreJournaledAndObserved(t *testing.T) {
	// Setup
	jrnl := journal.New(nil)
	eng := engine.New(catalog.Default(), logger.NewLogger())
	s := New(eng, eng.NewGame(), engine.NewSeededRNG(1), engine.SystemClock(), jrnl, logger.NewLogger())

	observed := make(chan engine.Action, 8)
	s.OnResult(func(act engine.Action, _ engine.Result) {
		observed <- act
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Act: one applied action, one rejection
	applied := s.Dispatch(engine.Action{Type: engine.ActionManipulate})
	rejected := s.Dispatch(engine.Action{Type: engine.ActionPurchaseUpgrade, TargetID: "viral_templates"})

	// Assert
	if applied.Rejected {
		t.Fatal("Expected manipulate to apply")
	}
	if !rejected.Rejected {
		t.Fatal("Expected unaffordable purchase to be rejected")
	}
	if jrnl.Len() != 1 {
		t.Errorf("Expected only the applied action journaled, got %d entries", jrnl.Len())
	}
	select {
	case act := <-observed:
		if act.Type != engine.ActionManipulate {
			t.Errorf("Expected observer to see the applied action, got %s", act.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected observer callback")
	}
	select {
	case act := <-observed:
		t.Errorf("Expected no observer call for rejections, got %s", act.Type)
	default:
	}
}

func TestStateReturnsIsolatedClone(t *testing.T) {
	s, _ := startSession(t, nil)
	s.Dispatch(engine.Action{Type: engine.ActionManipulate})

	snap := s.State()
	snap.Counters[state.CounterManipulate] = 9999

	if got := s.State().Counter(state.CounterManipulate); got != 1 {
		t.Errorf("Expected live state unaffected by snapshot mutation, got %d", got)
	}
}

func TestDispatchAfterStopIsRejected(t *testing.T) {
	s, _ := startSession(t, nil)
	s.Stop()

	res := s.Dispatch(engine.Action{Type: engine.ActionManipulate})

	if !res.Rejected {
		t.Error("Expected dispatch after stop to be rejected")
	}
}

func TestSchedulerDispatchesElapsedTime(t *testing.T) {
	// Setup: observer collects tick actions
	eng := engine.New(catalog.Default(), logger.NewLogger())
	s := New(eng, eng.NewGame(), engine.NewSeededRNG(1), engine.SystemClock(), nil, logger.NewLogger())

	ticks := make(chan engine.Action, 64)
	s.OnResult(func(act engine.Action, _ engine.Result) {
		if act.Type == engine.ActionTick {
			ticks <- act
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	sc := NewScheduler(s, engine.SystemClock(), 10*time.Millisecond, logger.NewLogger())
	go sc.Run(ctx)
	defer sc.Stop()

	// Assert: ticks arrive with a positive measured delta
	select {
	case act := <-ticks:
		if act.DeltaTime <= 0 {
			t.Errorf("Expected positive delta time, got %v", act.DeltaTime)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a scheduler tick")
	}
}
