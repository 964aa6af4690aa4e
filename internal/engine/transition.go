// Package engine implements the pure state-transition function, the outcome
// engine for risky actions, and the achievement evaluator. The only live
// GameState is owned by a Session; every transition produces a new state
// value from the previous one plus an action.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/platform/logger"
)

// Engine binds the read-only catalog to the transition rules.
type Engine struct {
	catalog *catalog.Catalog
	logger  *logger.Logger
}

// New creates an engine over a validated catalog.
func New(cat *catalog.Catalog, log *logger.Logger) *Engine {
	return &Engine{catalog: cat, logger: log}
}

// Catalog exposes the content definitions for presentation reads.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Result is the outcome of one transition.
type Result struct {
	State         *state.GameState
	Unlocked      []string
	Notifications []Notification

	// Rejected marks a precondition failure: the state is the input state,
	// unchanged. Rejections are expected outcomes, never errors.
	Rejected bool
}

// Transition applies one action to the state and returns the next state,
// newly unlocked achievement ids and notifications. Deterministic for fixed
// rng and now: randomness and wall-clock time are injected, never ambient.
func (e *Engine) Transition(st *state.GameState, act Action, rng RandomSource, now time.Time) Result {
	next := st.Clone()
	var notes []Notification

	switch act.Type {
	case ActionManipulate:
		gain := e.catalog.BaseManipulationRate * next.Multipliers.Factor(ledger.ManipulationPoints)
		next.Ledger = next.Ledger.Credit(ledger.ManipulationPoints, gain)
		next.Counters[state.CounterManipulate]++

	case ActionPurchaseUpgrade:
		n, ok := e.purchaseUpgrade(next, act.TargetID)
		if !ok {
			return Result{State: st, Rejected: true}
		}
		notes = append(notes, n...)

	case ActionPropagateTheory:
		n, ok := e.propagateTheory(next, act.TargetID, rng)
		if !ok {
			return Result{State: st, Rejected: true}
		}
		notes = append(notes, n...)

	case ActionPerformEthical:
		n, ok := e.performEthicalAction(next, act.TargetID)
		if !ok {
			return Result{State: st, Rejected: true}
		}
		notes = append(notes, n...)

	case ActionUnlockEra:
		n, ok := e.unlockEra(next, act.TargetID)
		if !ok {
			return Result{State: st, Rejected: true}
		}
		notes = append(notes, n...)

	case ActionSelectEra:
		if !next.EraUnlocked(act.TargetID) {
			return Result{State: st, Rejected: true}
		}
		next.CurrentEraID = act.TargetID
		e.recomputeMultipliers(next)

	case ActionTick:
		e.applyTick(next, act.DeltaTime)

	case ActionSwitchMode:
		mode := act.Mode
		if mode != state.ModeManipulation && mode != state.ModeRevelation {
			return Result{State: st, Rejected: true}
		}
		if next.Mode != mode {
			next.Mode = mode
			next.Flags["mode_switched"] = true
		}

	case ActionClickLoreLink:
		next.Flags["lore_link_clicked"] = true

	case ActionNewGame:
		next = e.NewGame()

	default:
		if name, ok := strings.CutPrefix(string(act.Type), acknowledgePrefix); ok && name != "" {
			next.Flags[strings.ToLower(name)+"_acknowledged"] = true
			break
		}
		return Result{State: st, Rejected: true}
	}

	unlocked, achNotes := e.evaluateAchievements(next, now)
	notes = append(notes, achNotes...)

	return Result{State: next, Unlocked: unlocked, Notifications: notes}
}

// purchaseUpgrade applies PURCHASE_UPGRADE. The upgrade must be scoped to the
// current era, unpurchased and affordable; the cost is deducted atomically.
func (e *Engine) purchaseUpgrade(s *state.GameState, id string) ([]Notification, bool) {
	u := e.catalog.Upgrade(id)
	if u == nil || u.EraID != s.CurrentEraID {
		return nil, false
	}
	if s.Upgrades[id].Purchased {
		return nil, false
	}
	nextLedger, ok := s.Ledger.Spend(u.Cost)
	if !ok {
		return nil, false
	}
	s.Ledger = nextLedger
	s.Upgrades[id] = state.UpgradeStatus{ID: id, Purchased: true}
	s.Counters[state.CounterUpgradesPurchased]++

	switch u.Effect.Kind {
	case catalog.EffectMultiplier:
		e.recomputeMultipliers(s)
	case catalog.EffectFeature:
		s.Features[u.Effect.Feature] = true
	case catalog.EffectPassive:
		// Passive generators are read from the catalog on every tick; the
		// purchased flag is the only state.
	}

	return []Notification{
		notify(NotifySuccess, fmt.Sprintf("%s acquired", u.Name), durationShort),
	}, true
}

// unlockEra applies UNLOCK_ERA: influence pays the unlock cost.
func (e *Engine) unlockEra(s *state.GameState, id string) ([]Notification, bool) {
	era := e.catalog.Era(id)
	if era == nil || s.EraUnlocked(id) {
		return nil, false
	}
	nextLedger, ok := s.Ledger.Spend(ledger.Cost{ledger.Influence: era.UnlockCost})
	if !ok {
		return nil, false
	}
	s.Ledger = nextLedger
	s.Eras[id] = state.EraStatus{ID: id, Unlocked: true}
	s.Counters[state.CounterErasUnlocked]++

	return []Notification{
		notify(NotifySuccess, fmt.Sprintf("%s unlocked", era.Name), durationLong),
	}, true
}

// applyTick credits every purchased passive generator by rate × dt × the
// active multiplier. Catalog order keeps the arithmetic reproducible.
func (e *Engine) applyTick(s *state.GameState, dt float64) {
	if dt <= 0 {
		return
	}
	for _, u := range e.catalog.Upgrades {
		if u.Effect.Kind != catalog.EffectPassive || !s.Upgrades[u.ID].Purchased {
			continue
		}
		gain := u.Effect.Rate * dt * s.Multipliers.Factor(u.Effect.Resource)
		s.Ledger = s.Ledger.Credit(u.Effect.Resource, gain)
	}
}

// NewGame constructs a fresh state from catalog defaults.
func (e *Engine) NewGame() *state.GameState {
	s := &state.GameState{
		Ledger:         ledger.New(e.catalog.StartingResources),
		Multipliers:    ledger.NewMultiplierTable(),
		Eras:           make(map[string]state.EraStatus, len(e.catalog.Eras)),
		Upgrades:       make(map[string]state.UpgradeStatus, len(e.catalog.Upgrades)),
		Theories:       make(map[string]state.TheoryStatus, len(e.catalog.Theories)),
		EthicalActions: make(map[string]state.EthicalActionStatus, len(e.catalog.EthicalActions)),
		Achievements:   make(map[string]state.AchievementStatus, len(e.catalog.Achievements)),
		CurrentEraID:   e.catalog.StartingEraID,
		EthicalScore:   50,
		Mode:           state.ModeManipulation,
		Counters:       make(map[string]int),
		Flags:          make(map[string]bool),
		Features:       make(map[string]bool),
	}
	for _, era := range e.catalog.Eras {
		s.Eras[era.ID] = state.EraStatus{
			ID:       era.ID,
			Unlocked: era.ID == e.catalog.StartingEraID || era.UnlockCost == 0,
		}
	}
	for _, u := range e.catalog.Upgrades {
		s.Upgrades[u.ID] = state.UpgradeStatus{ID: u.ID}
	}
	for _, th := range e.catalog.Theories {
		s.Theories[th.ID] = state.TheoryStatus{ID: th.ID}
	}
	for _, ea := range e.catalog.EthicalActions {
		s.EthicalActions[ea.ID] = state.EthicalActionStatus{ID: ea.ID}
	}
	for _, a := range e.catalog.Achievements {
		s.Achievements[a.ID] = state.AchievementStatus{ID: a.ID}
	}
	e.recomputeMultipliers(s)
	return s
}

// RefreshDerived recomputes catalog-derived state. Called after a persisted
// snapshot is reconciled against a possibly newer catalog, where the saved
// multiplier table may no longer match the content definitions.
func (e *Engine) RefreshDerived(s *state.GameState) {
	e.recomputeMultipliers(s)
}

// recomputeMultipliers rebuilds the active table from its three sources: the
// currently selected era (table plus techniques), purchased multiplier
// upgrades, and unlocked multiplier achievement rewards. Iteration follows
// catalog order with sorted map keys so the float product is reproducible.
func (e *Engine) recomputeMultipliers(s *state.GameState) {
	t := ledger.NewMultiplierTable()

	if era := e.catalog.Era(s.CurrentEraID); era != nil {
		resources := make([]string, 0, len(era.Multipliers))
		for r := range era.Multipliers {
			resources = append(resources, string(r))
		}
		sort.Strings(resources)
		for _, r := range resources {
			t = t.Apply(ledger.Resource(r), era.Multipliers[ledger.Resource(r)])
		}
		for _, tech := range era.Techniques {
			t = t.Apply(tech.Resource, tech.Factor)
		}
	}

	for _, u := range e.catalog.Upgrades {
		if u.Effect.Kind == catalog.EffectMultiplier && s.Upgrades[u.ID].Purchased {
			t = t.Apply(u.Effect.Resource, u.Effect.Factor)
		}
	}

	for _, a := range e.catalog.Achievements {
		if a.Reward.Kind == catalog.RewardMultiplier && s.Achievements[a.ID].Unlocked {
			t = t.Apply(a.Reward.Resource, a.Reward.Factor)
		}
	}

	s.Multipliers = t
}
