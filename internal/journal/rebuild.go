package journal

import (
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
)

// Rebuild replays a recorded action sequence through the transition function.
// With the initial state and the same seeded RNG the original session used,
// the result is byte-for-byte the state the session ended with. Used by the
// determinism tests and available for audit tooling.
func Rebuild(eng *engine.Engine, initial *state.GameState, entries []Entry, rng engine.RandomSource) *state.GameState {
	current := initial
	for _, e := range entries {
		res := eng.Transition(current, e.Action, rng, e.Timestamp)
		if res.Rejected {
			// Journaled actions were applied once already; a rejection here
			// means the replay inputs do not match the original session.
			continue
		}
		current = res.State
	}
	return current
}
