package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/platform/logger"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// plainCatalog is a minimal content set with no ambient multipliers, so gains
// come out as exact round numbers.
func plainCatalog() *catalog.Catalog {
	c := &catalog.Catalog{
		Version:              "test-1",
		BaseManipulationRate: 1,
		StartingEraID:        "antiquity",
		StartingResources: map[ledger.Resource]float64{
			ledger.ManipulationPoints: 0,
		},
		Eras: []catalog.Era{
			{ID: "antiquity", Name: "Antiquity", UnlockCost: 0},
			{
				ID: "later", Name: "Later Era", UnlockCost: 100,
				Multipliers: map[ledger.Resource]float64{ledger.ManipulationPoints: 2.0},
			},
		},
		Upgrades: []catalog.Upgrade{
			{
				ID: "megaphone", EraID: "antiquity", Name: "Megaphone",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 10},
				Effect: catalog.UpgradeEffect{Kind: catalog.EffectMultiplier, Resource: ledger.ManipulationPoints, Factor: 2.0},
			},
			{
				ID: "rumor_press", EraID: "antiquity", Name: "Rumor Press",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 20},
				Effect: catalog.UpgradeEffect{Kind: catalog.EffectPassive, Resource: ledger.ManipulationPoints, Rate: 2.0},
			},
		},
		Theories: []catalog.Theory{
			{
				ID: "sure_thing", EraID: "antiquity", Name: "Sure Thing",
				CostResource: ledger.ManipulationPoints, Cost: 50, SuccessRate: 1.0,
				EthicalImpact: -2, LivesImpacted: 10,
				Reward: map[ledger.Resource]float64{ledger.Credibility: 30},
			},
			{
				ID: "lost_cause", EraID: "antiquity", Name: "Lost Cause",
				CostResource: ledger.ManipulationPoints, Cost: 50, SuccessRate: 0.0,
				EthicalImpact: -2, LivesImpacted: 10,
				Reward: map[ledger.Resource]float64{ledger.Credibility: 30},
			},
		},
		EthicalActions: []catalog.EthicalAction{
			{
				ID: "confess", Name: "Confess",
				Cost:        ledger.Cost{ledger.ManipulationPoints: 5},
				EthicalGain: 60, CriticalThinkingGain: 10,
			},
		},
	}
	c.Reindex()
	return c
}

func plainEngine() *Engine {
	return New(plainCatalog(), logger.NewLogger())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestManipulateAccumulates(t *testing.T) {
	// Setup
	e := plainEngine()
	st := e.NewGame()
	rng := NewSeededRNG(1)

	// Act: ten manual manipulations
	for i := 0; i < 10; i++ {
		res := e.Transition(st, Action{Type: ActionManipulate}, rng, testNow)
		if res.Rejected {
			t.Fatalf("MANIPULATE rejected on iteration %d", i)
		}
		st = res.State
	}

	// Assert
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 10) {
		t.Errorf("Expected 10 manipulation points, got %v", got)
	}
	if got := st.Counter(state.CounterManipulate); got != 10 {
		t.Errorf("Expected manipulate counter 10, got %d", got)
	}
}

func TestManipulateAppliesMultiplier(t *testing.T) {
	// Setup: buy the x2 multiplier upgrade first
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 10)
	rng := NewSeededRNG(1)

	res := e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "megaphone"}, rng, testNow)
	if res.Rejected {
		t.Fatal("Expected upgrade purchase to succeed")
	}
	st = res.State
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 0) {
		t.Fatalf("Expected cost fully deducted, got %v", got)
	}

	// Act
	st = e.Transition(st, Action{Type: ActionManipulate}, rng, testNow).State

	// Assert: base rate 1 scaled by the x2 upgrade
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 2) {
		t.Errorf("Expected 2 manipulation points after multiplied click, got %v", got)
	}
}

func TestPurchaseUpgradeInsufficientFundsRejected(t *testing.T) {
	// Setup: empty ledger
	e := plainEngine()
	st := e.NewGame()
	rng := NewSeededRNG(1)

	// Act
	res := e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "megaphone"}, rng, testNow)

	// Assert: rejected and the input state is returned untouched
	if !res.Rejected {
		t.Fatal("Expected rejection for unaffordable upgrade")
	}
	if res.State != st {
		t.Error("Expected rejection to return the input state unchanged")
	}
	if st.Upgrades["megaphone"].Purchased {
		t.Error("Expected upgrade to stay unpurchased")
	}
}

func TestPurchaseUpgradeTwiceRejected(t *testing.T) {
	// Setup
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 30)
	rng := NewSeededRNG(1)

	st = e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "megaphone"}, rng, testNow).State

	// Act
	res := e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "megaphone"}, rng, testNow)

	// Assert
	if !res.Rejected {
		t.Error("Expected second purchase of the same upgrade to be rejected")
	}
	if got := res.State.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 20) {
		t.Errorf("Expected balance untouched at 20, got %v", got)
	}
}

func TestPurchaseUpgradeOutsideCurrentEraRejected(t *testing.T) {
	// Setup: catalog with an upgrade scoped to a locked era
	c := plainCatalog()
	c.Upgrades = append(c.Upgrades, catalog.Upgrade{
		ID: "future_toy", EraID: "later", Name: "Future Toy",
		Cost:   ledger.Cost{ledger.ManipulationPoints: 1},
		Effect: catalog.UpgradeEffect{Kind: catalog.EffectFeature, Feature: "toy"},
	})
	c.Reindex()
	e := New(c, logger.NewLogger())
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 100)

	// Act
	res := e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "future_toy"}, NewSeededRNG(1), testNow)

	// Assert
	if !res.Rejected {
		t.Error("Expected purchase outside the current era to be rejected")
	}
}

func TestTheorySuccessGrantsRewardAndImpact(t *testing.T) {
	// Setup: guaranteed theory, exact funds plus change
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 60)
	rng := NewSeededRNG(1)

	// Act
	res := e.Transition(st, Action{Type: ActionPropagateTheory, TargetID: "sure_thing"}, rng, testNow)

	// Assert
	if res.Rejected {
		t.Fatal("Expected propagation to apply")
	}
	st = res.State
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 10) {
		t.Errorf("Expected cost deducted to 10, got %v", got)
	}
	if got := st.Ledger.Balance(ledger.Credibility); !almostEqual(got, 30) {
		t.Errorf("Expected 30 credibility reward, got %v", got)
	}
	if !st.Theories["sure_thing"].Propagated {
		t.Error("Expected propagated flag set")
	}
	if st.EthicalScore != 48 {
		t.Errorf("Expected ethical score 48, got %d", st.EthicalScore)
	}
	if st.Stats.TheoriesPropagated != 1 || st.Stats.LivesImpacted != 10 {
		t.Errorf("Expected stats (1 propagated, 10 lives), got %+v", st.Stats)
	}

	// Act again: a propagated theory cannot be re-propagated
	res = e.Transition(st, Action{Type: ActionPropagateTheory, TargetID: "sure_thing"}, rng, testNow)
	if !res.Rejected {
		t.Error("Expected re-propagation to be rejected")
	}
}

func TestTheoryFailureLosesCostOnly(t *testing.T) {
	// Setup: impossible theory
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 60)
	rng := NewSeededRNG(1)

	// Act
	res := e.Transition(st, Action{Type: ActionPropagateTheory, TargetID: "lost_cause"}, rng, testNow)

	// Assert: the attempt applies, the cost is lost, nothing else changes
	if res.Rejected {
		t.Fatal("Expected failed propagation to still apply (cost at risk)")
	}
	st = res.State
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 10) {
		t.Errorf("Expected cost deducted to 10, got %v", got)
	}
	if got := st.Ledger.Balance(ledger.Credibility); !almostEqual(got, 0) {
		t.Errorf("Expected no reward on failure, got %v credibility", got)
	}
	if st.Theories["lost_cause"].Propagated {
		t.Error("Expected propagated flag to stay false after failure")
	}
	if st.EthicalScore != 50 {
		t.Errorf("Expected ethical score untouched at 50, got %d", st.EthicalScore)
	}
	if st.Counter(state.CounterTheoriesFailed) != 1 {
		t.Errorf("Expected 1 failed attempt recorded, got %d", st.Counter(state.CounterTheoriesFailed))
	}
}

func TestTheoryUnaffordableRejected(t *testing.T) {
	e := plainEngine()
	st := e.NewGame()

	res := e.Transition(st, Action{Type: ActionPropagateTheory, TargetID: "sure_thing"}, NewSeededRNG(1), testNow)

	if !res.Rejected {
		t.Error("Expected unaffordable propagation to be rejected")
	}
}

func TestEthicalActionClampsScores(t *testing.T) {
	// Setup: gain pushes the score past the ceiling
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 5)
	rng := NewSeededRNG(1)

	// Act
	res := e.Transition(st, Action{Type: ActionPerformEthical, TargetID: "confess"}, rng, testNow)

	// Assert
	if res.Rejected {
		t.Fatal("Expected ethical action to apply")
	}
	st = res.State
	if st.EthicalScore != 100 {
		t.Errorf("Expected ethical score clamped to 100, got %d", st.EthicalScore)
	}
	if st.CriticalThinking != 10 {
		t.Errorf("Expected critical thinking 10, got %d", st.CriticalThinking)
	}
	if !st.EthicalActions["confess"].Performed {
		t.Error("Expected performed flag set")
	}
	if st.Stats.EthicalActionsPerformed != 1 {
		t.Errorf("Expected 1 ethical action recorded, got %d", st.Stats.EthicalActionsPerformed)
	}

	// Act again: one-shot
	res = e.Transition(st, Action{Type: ActionPerformEthical, TargetID: "confess"}, rng, testNow)
	if !res.Rejected {
		t.Error("Expected repeat of a performed ethical action to be rejected")
	}
}

func TestUnlockAndSelectEra(t *testing.T) {
	// Setup
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.Influence, 100)
	rng := NewSeededRNG(1)

	// Selecting a locked era is rejected
	if res := e.Transition(st, Action{Type: ActionSelectEra, TargetID: "later"}, rng, testNow); !res.Rejected {
		t.Fatal("Expected selecting a locked era to be rejected")
	}

	// Act: unlock, then select
	res := e.Transition(st, Action{Type: ActionUnlockEra, TargetID: "later"}, rng, testNow)
	if res.Rejected {
		t.Fatal("Expected era unlock to apply")
	}
	st = res.State
	if got := st.Ledger.Balance(ledger.Influence); !almostEqual(got, 0) {
		t.Errorf("Expected influence spent, got %v", got)
	}
	if !st.EraUnlocked("later") {
		t.Fatal("Expected era to be unlocked")
	}

	res = e.Transition(st, Action{Type: ActionSelectEra, TargetID: "later"}, rng, testNow)
	if res.Rejected {
		t.Fatal("Expected selecting an unlocked era to apply")
	}
	st = res.State

	// Assert: the era's multiplier table is now active
	if got := st.Multipliers.Factor(ledger.ManipulationPoints); !almostEqual(got, 2.0) {
		t.Errorf("Expected era multiplier x2 active, got %v", got)
	}

	// Unlocking again is rejected
	if res := e.Transition(st, Action{Type: ActionUnlockEra, TargetID: "later"}, rng, testNow); !res.Rejected {
		t.Error("Expected re-unlock to be rejected")
	}
}

func TestTickAccruesPassiveGeneration(t *testing.T) {
	// Setup: buy the passive generator (rate 2/s)
	e := plainEngine()
	st := e.NewGame()
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 20)
	rng := NewSeededRNG(1)

	st = e.Transition(st, Action{Type: ActionPurchaseUpgrade, TargetID: "rumor_press"}, rng, testNow).State

	// Act: 3.5 elapsed seconds
	st = e.Transition(st, Action{Type: ActionTick, DeltaTime: 3.5}, rng, testNow).State

	// Assert
	if got := st.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 7) {
		t.Errorf("Expected 7 points from passive generation, got %v", got)
	}

	// Non-positive delta is a no-op, not a rejection
	res := e.Transition(st, Action{Type: ActionTick, DeltaTime: -1}, rng, testNow)
	if res.Rejected {
		t.Error("Expected non-positive tick to apply as a no-op")
	}
	if got := res.State.Ledger.Balance(ledger.ManipulationPoints); !almostEqual(got, 7) {
		t.Errorf("Expected balance unchanged by negative delta, got %v", got)
	}
}

func TestSwitchMode(t *testing.T) {
	e := plainEngine()
	st := e.NewGame()
	rng := NewSeededRNG(1)

	// Unknown mode is rejected
	if res := e.Transition(st, Action{Type: ActionSwitchMode, Mode: "chaos"}, rng, testNow); !res.Rejected {
		t.Fatal("Expected unknown mode to be rejected")
	}

	// Switching to the current mode does not mark the flag
	res := e.Transition(st, Action{Type: ActionSwitchMode, Mode: state.ModeManipulation}, rng, testNow)
	if res.Rejected || res.State.Flag("mode_switched") {
		t.Error("Expected same-mode switch to apply without marking the flag")
	}

	// A real switch marks the flag
	res = e.Transition(st, Action{Type: ActionSwitchMode, Mode: state.ModeRevelation}, rng, testNow)
	if res.Rejected {
		t.Fatal("Expected mode switch to apply")
	}
	if res.State.Mode != state.ModeRevelation || !res.State.Flag("mode_switched") {
		t.Errorf("Expected revelation mode with flag set, got mode=%s flag=%v",
			res.State.Mode, res.State.Flag("mode_switched"))
	}
}

func TestAcknowledgeActions(t *testing.T) {
	e := plainEngine()
	st := e.NewGame()
	rng := NewSeededRNG(1)

	res := e.Transition(st, Action{Type: "ACKNOWLEDGE_ETHICS_WARNING"}, rng, testNow)
	if res.Rejected {
		t.Fatal("Expected acknowledge action to apply")
	}
	if !res.State.Flag("ethics_warning_acknowledged") {
		t.Error("Expected acknowledgement flag set")
	}

	if res := e.Transition(st, Action{Type: "DO_BARREL_ROLL"}, rng, testNow); !res.Rejected {
		t.Error("Expected unknown action type to be rejected")
	}
}

func TestNewGameStartsFresh(t *testing.T) {
	e := New(catalog.Default(), logger.NewLogger())

	st := e.NewGame()

	if st.CurrentEraID != "antiquity" {
		t.Errorf("Expected starting era antiquity, got %s", st.CurrentEraID)
	}
	if !st.EraUnlocked("antiquity") || st.EraUnlocked("digital") {
		t.Error("Expected only free eras unlocked at start")
	}
	if st.EthicalScore != 50 || st.CriticalThinking != 0 {
		t.Errorf("Expected scores 50/0, got %d/%d", st.EthicalScore, st.CriticalThinking)
	}
	if st.Mode != state.ModeManipulation {
		t.Errorf("Expected manipulation mode, got %s", st.Mode)
	}
}

func TestTransitionIsDeterministic(t *testing.T) {
	// Setup: a scripted playthrough with risky actions under a fixed seed
	script := []Action{
		{Type: ActionManipulate}, {Type: ActionManipulate}, {Type: ActionManipulate},
		{Type: ActionTick, DeltaTime: 2.0},
		{Type: ActionManipulate}, {Type: ActionManipulate},
	}
	for i := 0; i < 60; i++ {
		script = append(script, Action{Type: ActionManipulate})
	}
	script = append(script,
		Action{Type: ActionPropagateTheory, TargetID: "sure_thing"},
		Action{Type: ActionPropagateTheory, TargetID: "lost_cause"},
		Action{Type: ActionManipulate},
	)

	run := func() *state.GameState {
		e := plainEngine()
		st := e.NewGame()
		rng := NewSeededRNG(42)
		for _, act := range script {
			res := e.Transition(st, act, rng, testNow)
			if !res.Rejected {
				st = res.State
			}
		}
		return st
	}

	// Act
	first := run()
	second := run()

	// Assert: identical inputs produce identical states
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical end states from identical runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestInvariantsHoldUnderRandomPlay(t *testing.T) {
	// Setup: hammer the engine with a seeded mix of every action type
	e := New(catalog.Default(), logger.NewLogger())
	st := e.NewGame()
	rng := NewSeededRNG(7)
	actions := []Action{
		{Type: ActionManipulate},
		{Type: ActionTick, DeltaTime: 1.0},
		{Type: ActionPurchaseUpgrade, TargetID: "persuasive_rhetoric"},
		{Type: ActionPurchaseUpgrade, TargetID: "whisper_network"},
		{Type: ActionPropagateTheory, TargetID: "divine_omens"},
		{Type: ActionPerformEthical, TargetID: "publish_retraction"},
		{Type: ActionUnlockEra, TargetID: "middle_ages"},
		{Type: ActionSelectEra, TargetID: "middle_ages"},
		{Type: ActionSwitchMode, Mode: state.ModeRevelation},
		{Type: ActionClickLoreLink},
	}

	// Act + Assert on every step
	for i := 0; i < 500; i++ {
		act := actions[int(rng.Float64()*float64(len(actions)))%len(actions)]
		res := e.Transition(st, act, rng, testNow)
		if res.Rejected {
			continue
		}
		st = res.State
		for r, bal := range st.Ledger.Balances() {
			if bal < 0 {
				t.Fatalf("Step %d: negative balance %v for %s after %s", i, bal, r, act.Type)
			}
		}
		if st.EthicalScore < 0 || st.EthicalScore > 100 {
			t.Fatalf("Step %d: ethical score %d out of range", i, st.EthicalScore)
		}
		if st.CriticalThinking < 0 || st.CriticalThinking > 100 {
			t.Fatalf("Step %d: critical thinking %d out of range", i, st.CriticalThinking)
		}
	}
}
