// Package state defines the GameState aggregate root. The engine owns the
// only live instance; every transition produces a new value via Clone, never
// by mutating a previous state in place.
package state

import (
	"time"

	"github.com/avidal-games/complot/internal/domain/ledger"
)

// SchemaVersion tags persisted snapshots so future migrations can key off it.
const SchemaVersion = 1

// Mode is the narrative stance of the playthrough.
type Mode string

const (
	ModeManipulation Mode = "manipulation"
	ModeRevelation   Mode = "revelation"
)

// EraStatus tracks runtime progress for one catalog era. Unlocked is
// monotonic: false to true, never reversed.
type EraStatus struct {
	ID       string `json:"id"`
	Unlocked bool   `json:"unlocked"`
}

// UpgradeStatus tracks a purchased flag, monotonic and idempotent.
type UpgradeStatus struct {
	ID        string `json:"id"`
	Purchased bool   `json:"purchased"`
}

// TheoryStatus tracks propagation. Propagated is set only on a successful
// propagation; a failed attempt leaves the theory available for retry.
type TheoryStatus struct {
	ID         string `json:"id"`
	Propagated bool   `json:"propagated"`
}

// EthicalActionStatus tracks a performed flag, monotonic.
type EthicalActionStatus struct {
	ID        string `json:"id"`
	Performed bool   `json:"performed"`
}

// AchievementStatus tracks unlock state. Unlocked and UnlockedAt are set once
// and never cleared, even if the achievement later leaves the catalog.
type AchievementStatus struct {
	ID         string    `json:"id"`
	Unlocked   bool      `json:"unlocked"`
	UnlockedAt time.Time `json:"unlocked_at,omitzero"`
}

// EthicsStats accumulates the second-axis progress counters.
type EthicsStats struct {
	TheoriesPropagated      int     `json:"theories_propagated"`
	EthicalActionsPerformed int     `json:"ethical_actions_performed"`
	InfluenceSacrificed     float64 `json:"influence_sacrificed"`
	LivesImpacted           int     `json:"lives_impacted"`
	CriticalThinkingRaised  int     `json:"critical_thinking_raised"`
}

// GameState is the aggregate root of a single playthrough.
type GameState struct {
	Ledger      ledger.Ledger
	Multipliers ledger.MultiplierTable

	Eras           map[string]EraStatus
	Upgrades       map[string]UpgradeStatus
	Theories       map[string]TheoryStatus
	EthicalActions map[string]EthicalActionStatus
	Achievements   map[string]AchievementStatus
	UnlockedCount  int

	CurrentEraID     string
	EthicalScore     int // 0..100
	CriticalThinking int // 0..100
	Mode             Mode
	Stats            EthicsStats

	// Counters holds cumulative action counts (manipulate clicks, upgrades
	// bought, ...) consumed by action-count achievement conditions.
	Counters map[string]int

	// Flags holds one-shot behavioral markers (lore link clicked, mode
	// switched, ...) consumed by special-flag achievement conditions.
	Flags map[string]bool

	// Features holds feature unlocks granted by upgrades and achievements.
	Features map[string]bool
}

// Counter names used by the engine and by achievement conditions.
const (
	CounterManipulate        = "manipulate"
	CounterUpgradesPurchased = "upgrades_purchased"
	CounterTheoriesAttempted = "theories_attempted"
	CounterTheoriesFailed    = "theories_failed"
	CounterErasUnlocked      = "eras_unlocked"
)

// Clone produces a deep structural copy. Transitions mutate the clone.
func (s *GameState) Clone() *GameState {
	next := &GameState{
		Ledger:           s.Ledger,
		Multipliers:      s.Multipliers,
		Eras:             make(map[string]EraStatus, len(s.Eras)),
		Upgrades:         make(map[string]UpgradeStatus, len(s.Upgrades)),
		Theories:         make(map[string]TheoryStatus, len(s.Theories)),
		EthicalActions:   make(map[string]EthicalActionStatus, len(s.EthicalActions)),
		Achievements:     make(map[string]AchievementStatus, len(s.Achievements)),
		UnlockedCount:    s.UnlockedCount,
		CurrentEraID:     s.CurrentEraID,
		EthicalScore:     s.EthicalScore,
		CriticalThinking: s.CriticalThinking,
		Mode:             s.Mode,
		Stats:            s.Stats,
		Counters:         make(map[string]int, len(s.Counters)),
		Flags:            make(map[string]bool, len(s.Flags)),
		Features:         make(map[string]bool, len(s.Features)),
	}
	for id, e := range s.Eras {
		next.Eras[id] = e
	}
	for id, u := range s.Upgrades {
		next.Upgrades[id] = u
	}
	for id, th := range s.Theories {
		next.Theories[id] = th
	}
	for id, ea := range s.EthicalActions {
		next.EthicalActions[id] = ea
	}
	for id, a := range s.Achievements {
		next.Achievements[id] = a
	}
	for k, v := range s.Counters {
		next.Counters[k] = v
	}
	for k, v := range s.Flags {
		next.Flags[k] = v
	}
	for k, v := range s.Features {
		next.Features[k] = v
	}
	return next
}

// Counter returns a cumulative action count, zero when absent.
func (s *GameState) Counter(name string) int {
	return s.Counters[name]
}

// Flag reports a one-shot behavioral marker.
func (s *GameState) Flag(name string) bool {
	return s.Flags[name]
}

// EraUnlocked reports whether the era exists and is unlocked.
func (s *GameState) EraUnlocked(id string) bool {
	e, ok := s.Eras[id]
	return ok && e.Unlocked
}

// ClampScore bounds the ethics-axis scores to [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
