package catalog

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Validate checks catalog integrity: id uniqueness, era references,
// probability ranges, cost sanity, and condition/reward shape. Unknown era
// references get a nearest-id hint to catch typos in overlay files.
func (c *Catalog) Validate() error {
	if c.BaseManipulationRate <= 0 {
		return fmt.Errorf("base_manipulation_rate must be positive, got %v", c.BaseManipulationRate)
	}

	eraIDs := make(map[string]bool, len(c.Eras))
	for _, e := range c.Eras {
		if e.ID == "" {
			return fmt.Errorf("era with empty id")
		}
		if eraIDs[e.ID] {
			return fmt.Errorf("duplicate era id %q", e.ID)
		}
		eraIDs[e.ID] = true
		if e.UnlockCost < 0 {
			return fmt.Errorf("era %q: negative unlock cost", e.ID)
		}
		for r, f := range e.Multipliers {
			if f < 1.0 {
				return fmt.Errorf("era %q: multiplier for %s below 1.0 baseline", e.ID, r)
			}
		}
		for _, t := range e.Techniques {
			if t.Factor < 1.0 {
				return fmt.Errorf("era %q technique %q: factor below 1.0 baseline", e.ID, t.ID)
			}
		}
	}

	if !eraIDs[c.StartingEraID] {
		return fmt.Errorf("starting era %q not defined%s", c.StartingEraID, c.suggestEra(c.StartingEraID))
	}

	seen := make(map[string]bool)
	for _, u := range c.Upgrades {
		if seen[u.ID] {
			return fmt.Errorf("duplicate upgrade id %q", u.ID)
		}
		seen[u.ID] = true
		if !eraIDs[u.EraID] {
			return fmt.Errorf("upgrade %q references unknown era %q%s", u.ID, u.EraID, c.suggestEra(u.EraID))
		}
		if len(u.Cost) == 0 {
			return fmt.Errorf("upgrade %q has no cost", u.ID)
		}
		for r, v := range u.Cost {
			if v <= 0 {
				return fmt.Errorf("upgrade %q: non-positive cost for %s", u.ID, r)
			}
		}
		switch u.Effect.Kind {
		case EffectMultiplier:
			if u.Effect.Resource == "" || u.Effect.Factor <= 1.0 {
				return fmt.Errorf("upgrade %q: multiplier effect needs a resource and a factor above 1.0", u.ID)
			}
		case EffectPassive:
			if u.Effect.Resource == "" || u.Effect.Rate <= 0 {
				return fmt.Errorf("upgrade %q: passive effect needs a resource and a positive rate", u.ID)
			}
		case EffectFeature:
			if u.Effect.Feature == "" {
				return fmt.Errorf("upgrade %q: feature effect needs a feature name", u.ID)
			}
		default:
			return fmt.Errorf("upgrade %q: unknown effect kind %q", u.ID, u.Effect.Kind)
		}
	}

	seen = make(map[string]bool)
	for _, th := range c.Theories {
		if seen[th.ID] {
			return fmt.Errorf("duplicate theory id %q", th.ID)
		}
		seen[th.ID] = true
		if !eraIDs[th.EraID] {
			return fmt.Errorf("theory %q references unknown era %q%s", th.ID, th.EraID, c.suggestEra(th.EraID))
		}
		if th.CostResource == "" || th.Cost <= 0 {
			return fmt.Errorf("theory %q: needs a cost resource and a positive cost", th.ID)
		}
		if th.SuccessRate < 0 || th.SuccessRate > 1 {
			return fmt.Errorf("theory %q: success rate %v outside [0,1]", th.ID, th.SuccessRate)
		}
	}

	seen = make(map[string]bool)
	for _, ea := range c.EthicalActions {
		if seen[ea.ID] {
			return fmt.Errorf("duplicate ethical action id %q", ea.ID)
		}
		seen[ea.ID] = true
		if ea.EthicalGain < 0 || ea.CriticalThinkingGain < 0 {
			return fmt.Errorf("ethical action %q: gains must be non-negative", ea.ID)
		}
	}

	seen = make(map[string]bool)
	for _, a := range c.Achievements {
		if seen[a.ID] {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		if err := validateCondition(a, eraIDs, c); err != nil {
			return err
		}
		switch a.Reward.Kind {
		case RewardMultiplier:
			if a.Reward.Resource == "" || a.Reward.Factor <= 1.0 {
				return fmt.Errorf("achievement %q: multiplier reward needs a resource and a factor above 1.0", a.ID)
			}
		case RewardBonus:
			if a.Reward.Resource == "" || a.Reward.Amount <= 0 {
				return fmt.Errorf("achievement %q: bonus reward needs a resource and a positive amount", a.ID)
			}
		case RewardFeature:
			if a.Reward.Feature == "" {
				return fmt.Errorf("achievement %q: feature reward needs a feature name", a.ID)
			}
		case RewardSpecial, "":
			// Special effects are interpreted by presentation; empty is a
			// valid no-reward achievement.
		default:
			return fmt.Errorf("achievement %q: unknown reward kind %q", a.ID, a.Reward.Kind)
		}
	}

	return nil
}

func validateCondition(a Achievement, eraIDs map[string]bool, c *Catalog) error {
	cond := a.Condition
	switch cond.Kind {
	case CondResourceThreshold:
		if cond.Resource == "" || cond.Threshold <= 0 {
			return fmt.Errorf("achievement %q: threshold condition needs a resource and a positive threshold", a.ID)
		}
	case CondActionCount:
		if cond.Counter == "" || cond.Count <= 0 {
			return fmt.Errorf("achievement %q: count condition needs a counter name and a positive count", a.ID)
		}
	case CondProgressionMilestone:
		if !eraIDs[cond.EraID] {
			return fmt.Errorf("achievement %q references unknown era %q%s", a.ID, cond.EraID, c.suggestEra(cond.EraID))
		}
	case CondSpecialFlag:
		if cond.Flag == "" {
			return fmt.Errorf("achievement %q: flag condition needs a flag name", a.ID)
		}
	case CondSpecificCombination:
		if cond.Predicate == nil {
			return fmt.Errorf("achievement %q: specific_combination condition needs a predicate", a.ID)
		}
	default:
		return fmt.Errorf("achievement %q: unknown condition kind %q", a.ID, cond.Kind)
	}
	return nil
}

// suggestEra returns a "did you mean" hint for the closest known era id.
func (c *Catalog) suggestEra(id string) string {
	best := ""
	bestDist := 4 // only suggest near misses
	for _, e := range c.Eras {
		if d := levenshtein.ComputeDistance(id, e.ID); d < bestDist {
			bestDist = d
			best = e.ID
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
