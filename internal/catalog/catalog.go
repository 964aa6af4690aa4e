// Package catalog holds the static, versioned content definitions: eras,
// upgrades, theories, ethical actions and achievements. The catalog is
// read-only at runtime; all player progress lives in the state aggregate.
package catalog

import (
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
)

// Technique is an era-scoped manipulation method contributing a named
// multiplier once its era is the current one.
type Technique struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Resource ledger.Resource `yaml:"resource"`
	Factor   float64         `yaml:"factor"`
}

// Era is a content-gating epoch. UnlockCost is paid in influence.
type Era struct {
	ID          string                      `yaml:"id"`
	Name        string                      `yaml:"name"`
	UnlockCost  float64                     `yaml:"unlock_cost"`
	Multipliers map[ledger.Resource]float64 `yaml:"multipliers"`
	Techniques  []Technique                 `yaml:"techniques"`
}

// UpgradeEffectKind selects what a purchased upgrade does.
type UpgradeEffectKind string

const (
	EffectMultiplier UpgradeEffectKind = "multiplier" // scales future credits of Resource
	EffectPassive    UpgradeEffectKind = "passive"    // flat generation of Resource per second
	EffectFeature    UpgradeEffectKind = "feature"    // sets a feature flag
)

// UpgradeEffect is the tagged effect variant of an upgrade.
type UpgradeEffect struct {
	Kind     UpgradeEffectKind `yaml:"kind"`
	Resource ledger.Resource   `yaml:"resource,omitempty"`
	Factor   float64           `yaml:"factor,omitempty"`
	Rate     float64           `yaml:"rate,omitempty"`
	Feature  string            `yaml:"feature,omitempty"`
}

// Upgrade is a one-time purchase scoped to an era.
type Upgrade struct {
	ID     string        `yaml:"id"`
	EraID  string        `yaml:"era"`
	Name   string        `yaml:"name"`
	Cost   ledger.Cost   `yaml:"cost"`
	Effect UpgradeEffect `yaml:"effect"`
}

// Theory is a risky propagation: the cost is always lost, the reward is
// granted only when the Bernoulli trial under SuccessRate hits.
type Theory struct {
	ID            string                      `yaml:"id"`
	EraID         string                      `yaml:"era"`
	Name          string                      `yaml:"name"`
	CostResource  ledger.Resource             `yaml:"cost_resource"`
	Cost          float64                     `yaml:"cost"`
	SuccessRate   float64                     `yaml:"success_rate"`
	EthicalImpact int                         `yaml:"ethical_impact"`
	LivesImpacted int                         `yaml:"lives_impacted"`
	Reward        map[ledger.Resource]float64 `yaml:"reward"`
}

// EthicalAction is a safe, guaranteed-effect action on the ethics axis.
type EthicalAction struct {
	ID                   string      `yaml:"id"`
	Name                 string      `yaml:"name"`
	Cost                 ledger.Cost `yaml:"cost"`
	EthicalGain          int         `yaml:"ethical_gain"`
	CriticalThinkingGain int         `yaml:"critical_thinking_gain"`
}

// ConditionKind tags an achievement condition variant.
type ConditionKind string

const (
	CondResourceThreshold    ConditionKind = "resource_threshold"
	CondActionCount          ConditionKind = "action_count"
	CondProgressionMilestone ConditionKind = "progression_milestone"
	CondSpecialFlag          ConditionKind = "special_flag"
	CondSpecificCombination  ConditionKind = "specific_combination"
)

// Condition is the tagged condition variant. Predicate is used only by
// specific_combination conditions; it must be pure (no mutation, no I/O) and
// a panic inside it is treated as "condition not met".
type Condition struct {
	Kind      ConditionKind   `yaml:"kind"`
	Resource  ledger.Resource `yaml:"resource,omitempty"`
	Threshold float64         `yaml:"threshold,omitempty"`
	Counter   string          `yaml:"counter,omitempty"`
	Count     int             `yaml:"count,omitempty"`
	EraID     string          `yaml:"era,omitempty"`
	Flag      string          `yaml:"flag,omitempty"`

	Predicate func(*state.GameState) bool `yaml:"-"`
}

// RewardKind tags an achievement reward variant.
type RewardKind string

const (
	RewardMultiplier RewardKind = "multiplier"
	RewardBonus      RewardKind = "bonus"
	RewardFeature    RewardKind = "feature"
	RewardSpecial    RewardKind = "special"
)

// Reward is the tagged reward variant. A zero-value reward is valid and
// applies nothing.
type Reward struct {
	Kind     RewardKind      `yaml:"kind,omitempty"`
	Resource ledger.Resource `yaml:"resource,omitempty"`
	Factor   float64         `yaml:"factor,omitempty"`
	Amount   float64         `yaml:"amount,omitempty"`
	Feature  string          `yaml:"feature,omitempty"`
	Effect   string          `yaml:"effect,omitempty"`
}

// Rarity grades achievements for presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Achievement is a static definition; unlock state lives in the state package.
type Achievement struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Condition   Condition `yaml:"condition"`
	Reward      Reward    `yaml:"reward"`
	Secret      bool      `yaml:"secret"`
	Category    string    `yaml:"category"`
	Rarity      Rarity    `yaml:"rarity"`
}

// Catalog is the full content set for one content version.
type Catalog struct {
	Version string `yaml:"version"`

	// BaseManipulationRate is the unscaled credit per MANIPULATE action.
	BaseManipulationRate float64 `yaml:"base_manipulation_rate"`

	StartingResources map[ledger.Resource]float64 `yaml:"starting_resources"`
	StartingEraID     string                      `yaml:"starting_era"`

	Eras           []Era           `yaml:"eras"`
	Upgrades       []Upgrade       `yaml:"upgrades"`
	Theories       []Theory        `yaml:"theories"`
	EthicalActions []EthicalAction `yaml:"ethical_actions"`
	Achievements   []Achievement   `yaml:"achievements"`

	eraIndex     map[string]*Era
	upgradeIndex map[string]*Upgrade
	theoryIndex  map[string]*Theory
	ethicalIndex map[string]*EthicalAction
	achIndex     map[string]*Achievement
}

// Reindex rebuilds the lookup maps after programmatic construction or
// mutation of the exported slices. Default and Load call it for you.
func (c *Catalog) Reindex() { c.buildIndex() }

// buildIndex populates the lookup maps. Called by Default and Load.
func (c *Catalog) buildIndex() {
	c.eraIndex = make(map[string]*Era, len(c.Eras))
	for i := range c.Eras {
		c.eraIndex[c.Eras[i].ID] = &c.Eras[i]
	}
	c.upgradeIndex = make(map[string]*Upgrade, len(c.Upgrades))
	for i := range c.Upgrades {
		c.upgradeIndex[c.Upgrades[i].ID] = &c.Upgrades[i]
	}
	c.theoryIndex = make(map[string]*Theory, len(c.Theories))
	for i := range c.Theories {
		c.theoryIndex[c.Theories[i].ID] = &c.Theories[i]
	}
	c.ethicalIndex = make(map[string]*EthicalAction, len(c.EthicalActions))
	for i := range c.EthicalActions {
		c.ethicalIndex[c.EthicalActions[i].ID] = &c.EthicalActions[i]
	}
	c.achIndex = make(map[string]*Achievement, len(c.Achievements))
	for i := range c.Achievements {
		c.achIndex[c.Achievements[i].ID] = &c.Achievements[i]
	}
}

// Era returns the era definition or nil.
func (c *Catalog) Era(id string) *Era { return c.eraIndex[id] }

// Upgrade returns the upgrade definition or nil.
func (c *Catalog) Upgrade(id string) *Upgrade { return c.upgradeIndex[id] }

// Theory returns the theory definition or nil.
func (c *Catalog) Theory(id string) *Theory { return c.theoryIndex[id] }

// EthicalAction returns the ethical action definition or nil.
func (c *Catalog) EthicalAction(id string) *EthicalAction { return c.ethicalIndex[id] }

// Achievement returns the achievement definition or nil.
func (c *Catalog) Achievement(id string) *Achievement { return c.achIndex[id] }
