package engine

import (
	"fmt"
	"sort"

	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
)

// propagateTheory applies PROPAGATE_THEORY. The cost is deducted
// unconditionally (that is the risk), then a Bernoulli trial under the
// theory's success probability decides the outcome. Policy: the propagated
// flag, reward and ethical impact apply only on success; a failed theory
// stays available for retry.
func (e *Engine) propagateTheory(s *state.GameState, id string, rng RandomSource) ([]Notification, bool) {
	th := e.catalog.Theory(id)
	if th == nil || th.EraID != s.CurrentEraID {
		return nil, false
	}
	if s.Theories[id].Propagated {
		return nil, false
	}
	nextLedger, ok := s.Ledger.Spend(ledger.Cost{th.CostResource: th.Cost})
	if !ok {
		return nil, false
	}
	s.Ledger = nextLedger
	s.Counters[state.CounterTheoriesAttempted]++

	if !bernoulli(th.SuccessRate, rng) {
		s.Counters[state.CounterTheoriesFailed]++
		return []Notification{
			notify(NotifyWarning, fmt.Sprintf("%s failed to take hold", th.Name), durationShort),
		}, true
	}

	// Rewards are future credits, so the active multipliers scale them.
	resources := make([]string, 0, len(th.Reward))
	for r := range th.Reward {
		resources = append(resources, string(r))
	}
	sort.Strings(resources)
	for _, name := range resources {
		r := ledger.Resource(name)
		s.Ledger = s.Ledger.Credit(r, th.Reward[r]*s.Multipliers.Factor(r))
	}

	s.Theories[id] = state.TheoryStatus{ID: id, Propagated: true}
	s.EthicalScore = state.ClampScore(s.EthicalScore + th.EthicalImpact)
	s.Stats.TheoriesPropagated++
	s.Stats.LivesImpacted += th.LivesImpacted

	return []Notification{
		notify(NotifySuccess, fmt.Sprintf("%s spreads through the population", th.Name), durationLong),
	}, true
}

// performEthicalAction applies PERFORM_ETHICAL_ACTION: a safe, guaranteed
// effect on the ethics axis.
func (e *Engine) performEthicalAction(s *state.GameState, id string) ([]Notification, bool) {
	ea := e.catalog.EthicalAction(id)
	if ea == nil || s.EthicalActions[id].Performed {
		return nil, false
	}
	nextLedger, ok := s.Ledger.Spend(ea.Cost)
	if !ok {
		return nil, false
	}
	s.Ledger = nextLedger

	prevThinking := s.CriticalThinking
	s.EthicalScore = state.ClampScore(s.EthicalScore + ea.EthicalGain)
	s.CriticalThinking = state.ClampScore(s.CriticalThinking + ea.CriticalThinkingGain)

	s.EthicalActions[id] = state.EthicalActionStatus{ID: id, Performed: true}
	s.Stats.EthicalActionsPerformed++
	s.Stats.InfluenceSacrificed += ea.Cost[ledger.Influence]
	s.Stats.CriticalThinkingRaised += s.CriticalThinking - prevThinking

	return []Notification{
		notify(NotifyEthical, fmt.Sprintf("%s: the truth gains ground", ea.Name), durationLong),
	}, true
}
