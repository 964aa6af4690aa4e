package engine

import (
	"fmt"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/state"
)

// evaluateAchievements scans the locked achievements against the
// post-mutation state, unlocks matches and applies their rewards. One pass in
// catalog order; conditions are order-independent and an already unlocked
// achievement is never re-evaluated. A reward unlocked in this pass is
// visible to conditions from the next transition on.
func (e *Engine) evaluateAchievements(s *state.GameState, now time.Time) ([]string, []Notification) {
	var unlocked []string
	var notes []Notification
	recompute := false

	for _, a := range e.catalog.Achievements {
		status := s.Achievements[a.ID]
		if status.Unlocked {
			continue
		}
		if !e.conditionMet(s, a.Condition) {
			continue
		}

		s.Achievements[a.ID] = state.AchievementStatus{ID: a.ID, Unlocked: true, UnlockedAt: now}
		s.UnlockedCount++
		unlocked = append(unlocked, a.ID)

		if e.applyReward(s, a.Reward) {
			recompute = true
		}

		notes = append(notes, notify(NotifySuccess,
			fmt.Sprintf("Achievement unlocked: %s", a.Name), durationLong))
	}

	if recompute {
		e.recomputeMultipliers(s)
	}
	return unlocked, notes
}

// conditionMet dispatches over the condition vocabulary.
func (e *Engine) conditionMet(s *state.GameState, cond catalog.Condition) bool {
	switch cond.Kind {
	case catalog.CondResourceThreshold:
		return s.Ledger.Balance(cond.Resource) >= cond.Threshold
	case catalog.CondActionCount:
		return counterValue(s, cond.Counter) >= cond.Count
	case catalog.CondProgressionMilestone:
		return s.EraUnlocked(cond.EraID)
	case catalog.CondSpecialFlag:
		return s.Flag(cond.Flag)
	case catalog.CondSpecificCombination:
		return e.safePredicate(cond.Predicate, s)
	default:
		return false
	}
}

// counterValue resolves an action-count name against both the generic
// counters and the well-known ethics statistics.
func counterValue(s *state.GameState, name string) int {
	switch name {
	case "theories_propagated":
		return s.Stats.TheoriesPropagated
	case "ethical_actions_performed":
		return s.Stats.EthicalActionsPerformed
	default:
		return s.Counter(name)
	}
}

// safePredicate runs a custom condition predicate. Predicates must be pure;
// a panic is contained here and treated as "condition not met" so one bad
// predicate cannot abort evaluation of the remaining achievements.
func (e *Engine) safePredicate(p func(*state.GameState) bool, s *state.GameState) (met bool) {
	if p == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			met = false
			e.logger.Warn(fmt.Sprintf("achievement predicate panicked: %v", r))
		}
	}()
	return p(s)
}

// applyReward applies an achievement reward. Multiplier rewards are folded
// into the table by a single recompute after the pass; the return value
// signals that recompute. A malformed or absent reward is a no-op.
func (e *Engine) applyReward(s *state.GameState, r catalog.Reward) bool {
	switch r.Kind {
	case catalog.RewardMultiplier:
		return r.Resource != "" && r.Factor > 1.0
	case catalog.RewardBonus:
		if r.Resource != "" && r.Amount > 0 {
			s.Ledger = s.Ledger.Credit(r.Resource, r.Amount)
		}
	case catalog.RewardFeature:
		if r.Feature != "" {
			s.Features[r.Feature] = true
		}
	case catalog.RewardSpecial:
		if r.Effect != "" {
			s.Flags["special_effect:"+r.Effect] = true
		}
	}
	return false
}
