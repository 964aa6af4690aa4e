package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/avidal-games/complot/internal/domain/ledger"
)

// Overlay is a partial catalog read from a YAML file. Entries are matched to
// builtin definitions by id; non-zero fields override the builtin numbers.
// Overlays can retune content but cannot introduce predicate code, so
// specific_combination conditions stay builtin-only.
type Overlay struct {
	Version              string  `yaml:"version"`
	BaseManipulationRate float64 `yaml:"base_manipulation_rate"`

	Eras           []Era           `yaml:"eras"`
	Upgrades       []Upgrade       `yaml:"upgrades"`
	Theories       []Theory        `yaml:"theories"`
	EthicalActions []EthicalAction `yaml:"ethical_actions"`
	Achievements   []Achievement   `yaml:"achievements"`
}

// Load builds the catalog from the builtins plus every *.yaml overlay in dir,
// applied in lexical order. An empty dir returns the builtins untouched.
func Load(dir string) (*Catalog, error) {
	c := Default()
	if dir == "" {
		return c, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read overlay %s: %w", name, err)
		}
		var ov Overlay
		if err := yaml.Unmarshal(b, &ov); err != nil {
			return nil, fmt.Errorf("parse overlay %s: %w", name, err)
		}
		applyOverlay(c, ov)
	}

	c.buildIndex()
	return c, nil
}

// applyOverlay merges one overlay onto the catalog. Unknown ids append new
// entries; known ids override only the fields the overlay actually sets.
func applyOverlay(c *Catalog, ov Overlay) {
	if ov.Version != "" {
		c.Version = ov.Version
	}
	if ov.BaseManipulationRate > 0 {
		c.BaseManipulationRate = ov.BaseManipulationRate
	}

	for _, e := range ov.Eras {
		if base := c.Era(e.ID); base != nil {
			mergeEra(base, e)
		} else {
			c.Eras = append(c.Eras, e)
			c.buildIndex()
		}
	}
	for _, u := range ov.Upgrades {
		if base := c.Upgrade(u.ID); base != nil {
			mergeUpgrade(base, u)
		} else {
			c.Upgrades = append(c.Upgrades, u)
			c.buildIndex()
		}
	}
	for _, th := range ov.Theories {
		if base := c.Theory(th.ID); base != nil {
			mergeTheory(base, th)
		} else {
			c.Theories = append(c.Theories, th)
			c.buildIndex()
		}
	}
	for _, ea := range ov.EthicalActions {
		if base := c.EthicalAction(ea.ID); base != nil {
			mergeEthicalAction(base, ea)
		} else {
			c.EthicalActions = append(c.EthicalActions, ea)
			c.buildIndex()
		}
	}
	for _, a := range ov.Achievements {
		if base := c.Achievement(a.ID); base != nil {
			mergeAchievement(base, a)
		} else {
			c.Achievements = append(c.Achievements, a)
			c.buildIndex()
		}
	}
}

func mergeEra(base *Era, ov Era) {
	if ov.Name != "" {
		base.Name = ov.Name
	}
	if ov.UnlockCost > 0 {
		base.UnlockCost = ov.UnlockCost
	}
	if len(ov.Multipliers) > 0 {
		if base.Multipliers == nil {
			base.Multipliers = make(map[ledger.Resource]float64, len(ov.Multipliers))
		}
		for r, f := range ov.Multipliers {
			base.Multipliers[r] = f
		}
	}
	if len(ov.Techniques) > 0 {
		base.Techniques = ov.Techniques
	}
}

func mergeUpgrade(base *Upgrade, ov Upgrade) {
	if ov.Name != "" {
		base.Name = ov.Name
	}
	if ov.EraID != "" {
		base.EraID = ov.EraID
	}
	if len(ov.Cost) > 0 {
		base.Cost = ov.Cost
	}
	if ov.Effect.Kind != "" {
		base.Effect = ov.Effect
	}
}

func mergeTheory(base *Theory, ov Theory) {
	if ov.Name != "" {
		base.Name = ov.Name
	}
	if ov.EraID != "" {
		base.EraID = ov.EraID
	}
	if ov.CostResource != "" {
		base.CostResource = ov.CostResource
	}
	if ov.Cost > 0 {
		base.Cost = ov.Cost
	}
	if ov.SuccessRate > 0 {
		base.SuccessRate = ov.SuccessRate
	}
	if ov.EthicalImpact != 0 {
		base.EthicalImpact = ov.EthicalImpact
	}
	if ov.LivesImpacted != 0 {
		base.LivesImpacted = ov.LivesImpacted
	}
	if len(ov.Reward) > 0 {
		base.Reward = ov.Reward
	}
}

func mergeEthicalAction(base *EthicalAction, ov EthicalAction) {
	if ov.Name != "" {
		base.Name = ov.Name
	}
	if len(ov.Cost) > 0 {
		base.Cost = ov.Cost
	}
	if ov.EthicalGain != 0 {
		base.EthicalGain = ov.EthicalGain
	}
	if ov.CriticalThinkingGain != 0 {
		base.CriticalThinkingGain = ov.CriticalThinkingGain
	}
}

func mergeAchievement(base *Achievement, ov Achievement) {
	if ov.Name != "" {
		base.Name = ov.Name
	}
	if ov.Description != "" {
		base.Description = ov.Description
	}
	// Predicates never come from YAML; keep the builtin one.
	if ov.Condition.Kind != "" && ov.Condition.Kind != CondSpecificCombination {
		base.Condition = ov.Condition
	}
	if ov.Reward.Kind != "" {
		base.Reward = ov.Reward
	}
	if ov.Category != "" {
		base.Category = ov.Category
	}
	if ov.Rarity != "" {
		base.Rarity = ov.Rarity
	}
}
