// Package storage persists playthroughs: JSON snapshots and the action
// journal in SQLite, a debounced autosaver, and the reconciliation that
// merges an old snapshot with a newer content catalog.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
)

// Snapshot is the serialized form of one playthrough. SchemaVersion guards
// decoding: a snapshot from a newer schema is refused rather than guessed at.
type Snapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	CatalogVersion string    `json:"catalog_version"`
	SavedAt        time.Time `json:"saved_at"`

	Balances    map[ledger.Resource]float64 `json:"balances"`
	Multipliers map[ledger.Resource]float64 `json:"multipliers,omitempty"`

	Eras           map[string]state.EraStatus           `json:"eras"`
	Upgrades       map[string]state.UpgradeStatus       `json:"upgrades"`
	Theories       map[string]state.TheoryStatus        `json:"theories"`
	EthicalActions map[string]state.EthicalActionStatus `json:"ethical_actions"`
	Achievements   map[string]state.AchievementStatus   `json:"achievements"`
	UnlockedCount  int                                  `json:"unlocked_count"`

	CurrentEraID     string            `json:"current_era"`
	EthicalScore     int               `json:"ethical_score"`
	CriticalThinking int               `json:"critical_thinking"`
	Mode             state.Mode        `json:"mode"`
	Stats            state.EthicsStats `json:"stats"`

	Counters map[string]int  `json:"counters,omitempty"`
	Flags    map[string]bool `json:"flags,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// Encode captures a state into its persisted form. The input is cloned first
// so the snapshot shares no maps with the live state.
func Encode(st *state.GameState, catalogVersion string, at time.Time) *Snapshot {
	c := st.Clone()
	return &Snapshot{
		SchemaVersion:    state.SchemaVersion,
		CatalogVersion:   catalogVersion,
		SavedAt:          at,
		Balances:         c.Ledger.Balances(),
		Multipliers:      c.Multipliers.Factors(),
		Eras:             c.Eras,
		Upgrades:         c.Upgrades,
		Theories:         c.Theories,
		EthicalActions:   c.EthicalActions,
		Achievements:     c.Achievements,
		UnlockedCount:    c.UnlockedCount,
		CurrentEraID:     c.CurrentEraID,
		EthicalScore:     c.EthicalScore,
		CriticalThinking: c.CriticalThinking,
		Mode:             c.Mode,
		Stats:            c.Stats,
		Counters:         c.Counters,
		Flags:            c.Flags,
		Features:         c.Features,
	}
}

// Decode rebuilds a live state from the persisted form. Balances pass through
// ledger.New, which clamps any tampered negative value back to zero.
func (s *Snapshot) Decode() (*state.GameState, error) {
	if s.SchemaVersion > state.SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d is newer than supported %d", s.SchemaVersion, state.SchemaVersion)
	}
	st := &state.GameState{
		Ledger:           ledger.New(s.Balances),
		Multipliers:      ledger.FromFactors(s.Multipliers),
		Eras:             orEmpty(s.Eras),
		Upgrades:         orEmpty(s.Upgrades),
		Theories:         orEmpty(s.Theories),
		EthicalActions:   orEmpty(s.EthicalActions),
		Achievements:     orEmpty(s.Achievements),
		UnlockedCount:    s.UnlockedCount,
		CurrentEraID:     s.CurrentEraID,
		EthicalScore:     state.ClampScore(s.EthicalScore),
		CriticalThinking: state.ClampScore(s.CriticalThinking),
		Mode:             s.Mode,
		Stats:            s.Stats,
		Counters:         orEmpty(s.Counters),
		Flags:            orEmpty(s.Flags),
		Features:         orEmpty(s.Features),
	}
	if st.Mode != state.ModeManipulation && st.Mode != state.ModeRevelation {
		st.Mode = state.ModeManipulation
	}
	return st, nil
}

// Marshal renders the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot parses persisted JSON. A corrupt document is an error;
// callers treat that as "no save" and start fresh.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt snapshot: %w", err)
	}
	return &s, nil
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return make(map[string]V)
	}
	return m
}
