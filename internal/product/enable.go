// internal/product/enable.go
package product

import (
	"fmt"
	"math"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Option enablement.
 *
 * Determines whether one modifier option may move to a proposed placement
 * given the selection's current capacity consumption. Checks run in a fixed
 * order because the first failing check is the single disable reason the UI
 * reports:
 *
 *   1. Placement delta from the transition table
 *   2. Split differential (|left - right| bake balance)
 *   3. Bake weight capacity per side
 *   4. Flavor capacity per side
 *   5. Custom enable expression
 *
 * Time/blanket disables and fulfillment disables short-circuit earlier, in
 * the metadata engine's per-modifier pass, before this evaluation runs.
 *
 * The transition table is a transcribed business-rule constant, not a
 * derived formula: entries encode which transfers of weight between halves
 * each placement change represents.
 */

// DisableReason tags why an option placement is not currently allowed.
type DisableReason int

const (
	ReasonEnabled DisableReason = iota
	ReasonDisabledBlanket
	ReasonDisabledTime
	ReasonDisabledWeight
	ReasonDisabledFlavors
	ReasonDisabledSplitDifferential
	ReasonDisabledNoSplitting
	ReasonDisabledFunction
	ReasonDisabledFulfillment
)

var disableReasonNames = [...]string{
	"ENABLED",
	"DISABLED_BLANKET",
	"DISABLED_TIME",
	"DISABLED_WEIGHT",
	"DISABLED_FLAVORS",
	"DISABLED_SPLIT_DIFFERENTIAL",
	"DISABLED_NO_SPLITTING",
	"DISABLED_FUNCTION",
	"DISABLED_FULFILLMENT_TYPE",
}

// String returns the canonical name of the reason.
func (r DisableReason) String() string {
	if r < ReasonEnabled || r > ReasonDisabledFulfillment {
		return fmt.Sprintf("DisableReason(%d)", int(r))
	}
	return disableReasonNames[r]
}

// EnableState is a tagged disable reason. ExpressionID is set for
// DISABLED_FUNCTION, FulfillmentID for DISABLED_FULFILLMENT_TYPE.
type EnableState struct {
	Reason        DisableReason
	ExpressionID  types.ExpressionID
	FulfillmentID types.FulfillmentID
}

// Enabled reports whether the state allows the placement.
func (e EnableState) Enabled() bool {
	return e.Reason == ReasonEnabled
}

var stateEnabled = EnableState{Reason: ReasonEnabled}

// SideCounts is a per-side running total, indexed left=0, right=1.
type SideCounts [2]float64

// placementDeltas maps (current placement, proposed placement) to the
// per-side weight delta a transition causes, indexed [left, right].
// Transcribed truth table; the asymmetries are intentional.
var placementDeltas = [4][4]SideCounts{
	types.PlacementNone: {
		types.PlacementNone:  {0, 0},
		types.PlacementLeft:  {1, 0},
		types.PlacementRight: {0, 1},
		types.PlacementWhole: {1, 1},
	},
	types.PlacementLeft: {
		types.PlacementNone:  {-1, 0},
		types.PlacementLeft:  {0, 0},
		types.PlacementRight: {-1, 1},
		types.PlacementWhole: {0, 1},
	},
	types.PlacementRight: {
		types.PlacementNone:  {0, -1},
		types.PlacementLeft:  {1, -1},
		types.PlacementRight: {0, 0},
		types.PlacementWhole: {1, 0},
	},
	types.PlacementWhole: {
		types.PlacementNone:  {-1, -1},
		types.PlacementLeft:  {0, -1},
		types.PlacementRight: {-1, 0},
		types.PlacementWhole: {0, 0},
	},
}

// EvaluateEnablement decides whether opt may move from its current placement
// to the proposed placement, given the selection's current per-side bake and
// flavor totals.
func EvaluateEnablement(
	opt *types.ModifierOption,
	current types.Placement,
	bake, flavor SideCounts,
	proposed types.Placement,
	prod *types.Product,
	snap *catalog.Snapshot,
	ctx *expr.Context,
) (EnableState, error) {
	delta := placementDeltas[current][proposed]

	var bakeAfter, flavorAfter SideCounts
	for side := 0; side < 2; side++ {
		bakeAfter[side] = bake[side] + opt.Metadata.BakeFactor*delta[side]
		flavorAfter[side] = flavor[side] + opt.Metadata.FlavorFactor*delta[side]
	}

	flags := prod.DisplayFlags
	if math.Abs(bakeAfter[0]-bakeAfter[1]) > flags.BakeDifferentialMax {
		return EnableState{Reason: ReasonDisabledSplitDifferential}, nil
	}
	if bakeAfter[0] > flags.BakeMax || bakeAfter[1] > flags.BakeMax {
		return EnableState{Reason: ReasonDisabledWeight}, nil
	}
	if flavorAfter[0] > flags.FlavorMax || flavorAfter[1] > flags.FlavorMax {
		return EnableState{Reason: ReasonDisabledFlavors}, nil
	}

	if opt.EnableExpressionID != "" {
		node, err := snap.Expression(opt.EnableExpressionID)
		if err != nil {
			return EnableState{}, err
		}
		ok, err := expr.EvaluateBool(node, ctx)
		if err != nil {
			return EnableState{}, fmt.Errorf("enable expression %s: %w", opt.EnableExpressionID, err)
		}
		if !ok {
			return EnableState{Reason: ReasonDisabledFunction, ExpressionID: opt.EnableExpressionID}, nil
		}
	}

	return stateEnabled, nil
}

// disableStateForInterval maps an entity's disabled interval to its reason
// at the given service time, or ENABLED when the interval does not apply.
func disableStateForInterval(d *types.DisabledInterval, serviceTimeMillis int64) EnableState {
	if d == nil {
		return stateEnabled
	}
	if d.Blanket() {
		return EnableState{Reason: ReasonDisabledBlanket}
	}
	if d.Covers(serviceTimeMillis) {
		return EnableState{Reason: ReasonDisabledTime}
	}
	return stateEnabled
}
