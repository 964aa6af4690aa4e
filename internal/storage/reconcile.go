package storage

import (
	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/state"
)

// Reconcile merges a loaded state with the current content catalog. Content
// ships independently of saves, so a snapshot may predate new entries or
// outlive removed ones. The rules:
//
//   - catalog entries missing from the save are added locked/unpurchased
//   - saved entries keep their progress, including unlock timestamps
//   - saved entries absent from the catalog are kept, never discarded; a
//     removed achievement stays unlocked forever
//   - a current era the catalog no longer knows falls back to the start era
//
// Pure and idempotent: reconciling twice equals reconciling once.
func Reconcile(st *state.GameState, cat *catalog.Catalog) *state.GameState {
	next := st.Clone()

	for _, era := range cat.Eras {
		if _, ok := next.Eras[era.ID]; !ok {
			next.Eras[era.ID] = state.EraStatus{
				ID:       era.ID,
				Unlocked: era.ID == cat.StartingEraID || era.UnlockCost == 0,
			}
		}
	}
	for _, u := range cat.Upgrades {
		if _, ok := next.Upgrades[u.ID]; !ok {
			next.Upgrades[u.ID] = state.UpgradeStatus{ID: u.ID}
		}
	}
	for _, th := range cat.Theories {
		if _, ok := next.Theories[th.ID]; !ok {
			next.Theories[th.ID] = state.TheoryStatus{ID: th.ID}
		}
	}
	for _, ea := range cat.EthicalActions {
		if _, ok := next.EthicalActions[ea.ID]; !ok {
			next.EthicalActions[ea.ID] = state.EthicalActionStatus{ID: ea.ID}
		}
	}
	for _, a := range cat.Achievements {
		if _, ok := next.Achievements[a.ID]; !ok {
			next.Achievements[a.ID] = state.AchievementStatus{ID: a.ID}
		}
	}

	// UnlockedCount is derived; recount rather than trust the snapshot.
	count := 0
	for _, a := range next.Achievements {
		if a.Unlocked {
			count++
		}
	}
	next.UnlockedCount = count

	if cat.Era(next.CurrentEraID) == nil {
		next.CurrentEraID = cat.StartingEraID
	}
	if !next.EraUnlocked(next.CurrentEraID) {
		// The start era is always playable, whatever the save claims.
		next.Eras[next.CurrentEraID] = state.EraStatus{ID: next.CurrentEraID, Unlocked: true}
	}

	return next
}
