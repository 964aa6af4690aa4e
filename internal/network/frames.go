// Package network carries the WebSocket surface: clients send action frames,
// the hub broadcasts state, notification and achievement frames. Wire
// identity (notification ids) is attached here, never inside the engine.
package network

import (
	"sort"

	"github.com/google/uuid"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
)

// ActionFrame is an incoming player command.
type ActionFrame struct {
	Type     string `json:"type"`
	TargetID string `json:"target_id,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// toAction maps the wire frame onto an engine action. DeltaTime is never
// accepted from clients; only the scheduler produces ticks.
func (f ActionFrame) toAction() (engine.Action, bool) {
	if f.Type == "" || f.Type == string(engine.ActionTick) {
		return engine.Action{}, false
	}
	return engine.Action{
		Type:     engine.ActionType(f.Type),
		TargetID: f.TargetID,
		Mode:     state.Mode(f.Mode),
	}, true
}

// Frame types pushed to clients.
const (
	FrameState        = "state"
	FrameNotification = "notification"
	FrameAchievement  = "achievement"
	FrameRejected     = "rejected"
)

// ServerFrame is the envelope for every outgoing message.
type ServerFrame struct {
	Type         string            `json:"type"`
	State        *StateView        `json:"state,omitempty"`
	Notification *NotificationView `json:"notification,omitempty"`
	Achievement  *AchievementView  `json:"achievement,omitempty"`
	Action       string            `json:"action,omitempty"`
}

// NotificationView is a notification with its wire identity attached.
type NotificationView struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	Kind       string `json:"kind"`
	DurationMs int64  `json:"duration_ms"`
}

func notificationView(n engine.Notification) *NotificationView {
	return &NotificationView{
		ID:         uuid.NewString(),
		Message:    n.Message,
		Kind:       string(n.Kind),
		DurationMs: n.DurationHint.Milliseconds(),
	}
}

// AchievementView names a freshly unlocked achievement.
type AchievementView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Rarity      string `json:"rarity"`
}

// EntityView is the generic id-plus-done pair for upgrades, theories, eras
// and ethical actions.
type EntityView struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
}

// StateView is the client-facing projection of the full game state. Entity
// slices follow catalog order; saved-only entries come after, sorted by id.
type StateView struct {
	Balances    map[string]float64 `json:"balances"`
	Multipliers map[string]float64 `json:"multipliers"`

	CurrentEra       string            `json:"current_era"`
	Mode             string            `json:"mode"`
	EthicalScore     int               `json:"ethical_score"`
	CriticalThinking int               `json:"critical_thinking"`
	Stats            state.EthicsStats `json:"stats"`

	Eras           []EntityView `json:"eras"`
	Upgrades       []EntityView `json:"upgrades"`
	Theories       []EntityView `json:"theories"`
	EthicalActions []EntityView `json:"ethical_actions"`

	// Achievements lists unlocked ids only; locked secret achievements are
	// never exposed to the client.
	Achievements  []string `json:"achievements"`
	UnlockedCount int      `json:"unlocked_count"`

	Features []string `json:"features"`
}

// BuildStateView projects a state against the catalog.
func BuildStateView(st *state.GameState, cat *catalog.Catalog) *StateView {
	v := &StateView{
		Balances:         stringKeys(st.Ledger.Balances()),
		Multipliers:      stringKeys(st.Multipliers.Factors()),
		CurrentEra:       st.CurrentEraID,
		Mode:             string(st.Mode),
		EthicalScore:     st.EthicalScore,
		CriticalThinking: st.CriticalThinking,
		Stats:            st.Stats,
		UnlockedCount:    st.UnlockedCount,
	}

	v.Eras = entityViews(len(cat.Eras), func(i int) (string, bool) {
		id := cat.Eras[i].ID
		return id, st.Eras[id].Unlocked
	}, extraIDs(st.Eras, func(s state.EraStatus) bool { return s.Unlocked }, func(id string) bool { return cat.Era(id) != nil }))

	v.Upgrades = entityViews(len(cat.Upgrades), func(i int) (string, bool) {
		id := cat.Upgrades[i].ID
		return id, st.Upgrades[id].Purchased
	}, extraIDs(st.Upgrades, func(s state.UpgradeStatus) bool { return s.Purchased }, func(id string) bool { return cat.Upgrade(id) != nil }))

	v.Theories = entityViews(len(cat.Theories), func(i int) (string, bool) {
		id := cat.Theories[i].ID
		return id, st.Theories[id].Propagated
	}, extraIDs(st.Theories, func(s state.TheoryStatus) bool { return s.Propagated }, func(id string) bool { return cat.Theory(id) != nil }))

	v.EthicalActions = entityViews(len(cat.EthicalActions), func(i int) (string, bool) {
		id := cat.EthicalActions[i].ID
		return id, st.EthicalActions[id].Performed
	}, extraIDs(st.EthicalActions, func(s state.EthicalActionStatus) bool { return s.Performed }, func(id string) bool { return cat.EthicalAction(id) != nil }))

	for _, a := range cat.Achievements {
		if st.Achievements[a.ID].Unlocked {
			v.Achievements = append(v.Achievements, a.ID)
		}
	}
	var retired []string
	for id, s := range st.Achievements {
		if s.Unlocked && cat.Achievement(id) == nil {
			retired = append(retired, id)
		}
	}
	sort.Strings(retired)
	v.Achievements = append(v.Achievements, retired...)

	for f, on := range st.Features {
		if on {
			v.Features = append(v.Features, f)
		}
	}
	sort.Strings(v.Features)

	return v
}

func entityViews(n int, at func(int) (string, bool), extra []string) []EntityView {
	views := make([]EntityView, 0, n+len(extra))
	for i := 0; i < n; i++ {
		id, done := at(i)
		views = append(views, EntityView{ID: id, Done: done})
	}
	for _, id := range extra {
		views = append(views, EntityView{ID: id, Done: true})
	}
	return views
}

// extraIDs collects saved-only entries worth showing: progress on content the
// catalog no longer ships.
func extraIDs[S any](m map[string]S, done func(S) bool, known func(string) bool) []string {
	var ids []string
	for id, s := range m {
		if done(s) && !known(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func stringKeys(m map[ledger.Resource]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
