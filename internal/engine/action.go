package engine

import (
	"github.com/avidal-games/complot/internal/domain/state"
)

// ActionType tags the closed set of actions presentation code may dispatch.
type ActionType string

const (
	ActionManipulate      ActionType = "MANIPULATE"
	ActionPurchaseUpgrade ActionType = "PURCHASE_UPGRADE"
	ActionPropagateTheory ActionType = "PROPAGATE_THEORY"
	ActionPerformEthical  ActionType = "PERFORM_ETHICAL_ACTION"
	ActionUnlockEra       ActionType = "UNLOCK_ERA"
	ActionSelectEra       ActionType = "SELECT_ERA"
	ActionTick            ActionType = "TICK"
	ActionSwitchMode      ActionType = "SWITCH_MODE"
	ActionClickLoreLink   ActionType = "CLICK_LORE_LINK"
	ActionNewGame         ActionType = "NEW_GAME"
)

// acknowledgePrefix marks one-shot acknowledgement actions. Anything of the
// form ACKNOWLEDGE_<NAME> sets a behavioral flag consumed only by achievement
// conditions.
const acknowledgePrefix = "ACKNOWLEDGE_"

// Action is one dispatched command. TargetID addresses a catalog entry for
// purchase/propagate/unlock/select; DeltaTime carries tick seconds.
type Action struct {
	Type      ActionType `json:"type"`
	TargetID  string     `json:"target_id,omitempty"`
	DeltaTime float64    `json:"delta_time,omitempty"`
	Mode      state.Mode `json:"mode,omitempty"`
}
