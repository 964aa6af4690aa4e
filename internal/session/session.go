// Package session owns the single live GameState and serializes every action
// against it. All mutation flows through one goroutine, so the transition
// function never needs locks and actions apply in a total order.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
	"github.com/avidal-games/complot/internal/journal"
	"github.com/avidal-games/complot/internal/platform/logger"
	"github.com/avidal-games/complot/internal/platform/metrics"
)

// ResultFunc observes every applied action. Funcs run on the session
// goroutine, so they must be fast and hand off to their own channels.
type ResultFunc func(act engine.Action, res engine.Result)

// Session drives the game loop for one playthrough.
type Session struct {
	eng    *engine.Engine
	rng    engine.RandomSource
	clock  engine.Clock
	jrnl   *journal.Journal
	logger *logger.Logger

	actions  chan dispatchReq
	stopChan chan struct{}
	stopOnce sync.Once

	mu        sync.RWMutex
	current   *state.GameState
	observers []ResultFunc
}

type dispatchReq struct {
	act   engine.Action
	reply chan engine.Result
}

// New creates a session over an initial state. Register observers before Run.
func New(eng *engine.Engine, initial *state.GameState, rng engine.RandomSource, clock engine.Clock, jrnl *journal.Journal, log *logger.Logger) *Session {
	return &Session{
		eng:      eng,
		rng:      rng,
		clock:    clock,
		jrnl:     jrnl,
		logger:   log,
		actions:  make(chan dispatchReq),
		stopChan: make(chan struct{}),
		current:  initial,
	}
}

// OnResult registers an observer for applied actions. Not safe after Run.
func (s *Session) OnResult(fn ResultFunc) {
	s.observers = append(s.observers, fn)
}

// Run processes actions until the context is cancelled. Call in a goroutine.
func (s *Session) Run(ctx context.Context) {
	s.logger.Info("Session loop started.")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session loop stopped by context.")
			return
		case <-s.stopChan:
			s.logger.Info("Session loop stopped manually.")
			return
		case req := <-s.actions:
			res := s.apply(req.act)
			if req.reply != nil {
				req.reply <- res
			}
		}
	}
}

// Stop shuts the loop down without cancelling the parent context.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Dispatch queues an action and returns once it has been applied or rejected.
func (s *Session) Dispatch(act engine.Action) engine.Result {
	reply := make(chan engine.Result, 1)
	select {
	case s.actions <- dispatchReq{act: act, reply: reply}:
		return <-reply
	case <-s.stopChan:
		return engine.Result{Rejected: true}
	}
}

// State returns a clone of the current state, safe to read from any goroutine.
func (s *Session) State() *state.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// apply runs one transition on the session goroutine.
func (s *Session) apply(act engine.Action) engine.Result {
	now := s.clock.Now()
	start := time.Now()
	res := s.eng.Transition(s.current, act, s.rng, now)
	metrics.Get().RecordTransition(time.Since(start), res.Rejected)

	if res.Rejected {
		s.logger.Event(string(act.Type), "rejected")
		return res
	}

	s.mu.Lock()
	s.current = res.State
	s.mu.Unlock()

	if s.jrnl != nil {
		s.jrnl.Record(act, res.Unlocked, now)
	}
	if len(res.Unlocked) > 0 {
		metrics.Get().RecordAchievements(len(res.Unlocked))
	}
	if act.Type != engine.ActionTick {
		s.logger.Event(string(act.Type), act.TargetID)
	}

	for _, fn := range s.observers {
		fn(act, res)
	}
	return res
}
