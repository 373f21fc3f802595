// internal/product/metadata.go
package product

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Derived product metadata.
 *
 * GenerateMetadata is the top-level entry point: given a catalog snapshot,
 * a selection, a service time, and a fulfillment, it computes the full
 * customer-facing state of one configured product. Pure function of its
 * inputs; recomputed from scratch on every call, never persisted.
 *
 * Pipeline:
 *   1. Best-match search over the product's instances (most-specific-first,
 *      base last); the first instance resolving each side is fixed
 *   2. Capacity accumulation: per-side bake/flavor totals, price, split flag
 *   3. Per-modifier pass: type-level enablement, per-option enable states
 *      for left/right/whole, selection counts, incompleteness, exhaustive
 *      display lists
 *   4. Naming: fast path for unmodified exact matches, combinatorial
 *      assembly otherwise, then template substitution (naming.go)
 *
 * Failing to resolve both match sides is a catalog integrity error (the
 * base instance is always a fallback match); the computation fails whole,
 * no partial metadata is returned.
 */

// ModifierOptionRef points into a display list: a modifier type plus an
// option, or an empty option id for an unfilled-selection placeholder.
type ModifierOptionRef struct {
	ModifierTypeID types.ModifierTypeID
	OptionID       types.OptionID
}

// DisplayLists groups display references by the half they apply to.
type DisplayLists struct {
	Left  []ModifierOptionRef
	Right []ModifierOptionRef
	Whole []ModifierOptionRef
}

// OptionState is the derived per-option selection and enablement state.
type OptionState struct {
	Placement   types.Placement
	Qualifier   types.Qualifier
	EnableLeft  EnableState
	EnableRight EnableState
	EnableWhole EnableState
}

// ModifierState is the derived per-modifier-type state.
type ModifierState struct {
	HasSelectable bool
	MeetsMinimum  bool
	Options       map[types.OptionID]OptionState
}

// Metadata is the full derived state of one configured product.
type Metadata struct {
	Name        string
	ShortName   string
	Description string
	Price       decimal.Decimal
	// PI holds the catalog instances matched on each logical half.
	PI [2]types.ProductInstanceID
	// IsSplit is true when any option has LEFT or RIGHT placement.
	IsSplit bool
	// Incomplete is true when any modifier type with a selectable option
	// misses its minimum selection count on either half.
	Incomplete          bool
	Modifiers           map[types.ModifierTypeID]ModifierState
	AdditionalModifiers DisplayLists
	ExhaustiveModifiers DisplayLists
	BakeCount           SideCounts
	FlavorCount         SideCounts
}

// matchedSide fixes the instance and comparison that resolved one half.
type matchedSide struct {
	inst   *types.ProductInstance
	result CompareResult
}

// GenerateMetadata computes the derived metadata for one selection.
func GenerateMetadata(sel *types.ProductConfiguration, snap *catalog.Snapshot, serviceTimeMillis int64, fulfillment types.FulfillmentID) (*Metadata, error) {
	entry, ok := snap.Products[sel.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownProduct, sel.ProductID)
	}
	prod := entry.Product

	matches, err := findBestMatches(sel, entry, snap)
	if err != nil {
		return nil, err
	}

	md := &Metadata{
		Price:     prod.Price,
		Modifiers: make(map[types.ModifierTypeID]ModifierState, len(prod.Modifiers)),
		PI:        [2]types.ProductInstanceID{matches[0].inst.ID, matches[1].inst.ID},
	}

	if err := accumulateCapacity(md, sel, snap); err != nil {
		return nil, err
	}
	if err := evaluateModifiers(md, sel, prod, snap, serviceTimeMillis, fulfillment); err != nil {
		return nil, err
	}
	if err := applyNaming(md, sel, prod, snap, matches); err != nil {
		return nil, err
	}

	return md, nil
}

// findBestMatches scans the product's instances in catalog order and fixes,
// per side, the first instance whose comparison is not NO_MATCH.
func findBestMatches(sel *types.ProductConfiguration, entry *catalog.ProductEntry, snap *catalog.Snapshot) ([2]*matchedSide, error) {
	var matches [2]*matchedSide
	selView := ViewOfSelection(sel)

	for _, inst := range entry.Instances {
		if matches[0] != nil && matches[1] != nil {
			break
		}
		result, err := Compare(entry.Product, selView, ViewOfInstance(inst), snap)
		if err != nil {
			return matches, err
		}
		for side := 0; side < 2; side++ {
			if matches[side] == nil && result.Match[side] != NoMatch {
				matches[side] = &matchedSide{inst: inst, result: result}
			}
		}
	}

	if matches[0] == nil || matches[1] == nil {
		return matches, fmt.Errorf("%w: product %s", types.ErrUnresolvedMatch, sel.ProductID)
	}
	return matches, nil
}

// accumulateCapacity walks every placed option, accumulating per-side bake
// and flavor totals, the price, and the split flag.
func accumulateCapacity(md *Metadata, sel *types.ProductConfiguration, snap *catalog.Snapshot) error {
	for mtID, placed := range sel.Modifiers {
		for _, po := range placed {
			if po.Placement == types.PlacementNone {
				continue
			}
			opt, ok := snap.Options[po.OptionID]
			if !ok {
				return fmt.Errorf("%w: %s (modifier type %s)", types.ErrUnknownOption, po.OptionID, mtID)
			}
			if po.Placement.OnLeft() {
				md.BakeCount[0] += opt.Metadata.BakeFactor
				md.FlavorCount[0] += opt.Metadata.FlavorFactor
			}
			if po.Placement.OnRight() {
				md.BakeCount[1] += opt.Metadata.BakeFactor
				md.FlavorCount[1] += opt.Metadata.FlavorFactor
			}
			if po.Placement == types.PlacementLeft || po.Placement == types.PlacementRight {
				md.IsSplit = true
			}
			md.Price = md.Price.Add(opt.Price)
		}
	}
	return nil
}

// evaluateModifiers runs the per-modifier-type pass: type-level enablement,
// per-option enable states, selection counts, incompleteness tracking, and
// the exhaustive display lists.
func evaluateModifiers(md *Metadata, sel *types.ProductConfiguration, prod *types.Product, snap *catalog.Snapshot, serviceTimeMillis int64, fulfillment types.FulfillmentID) error {
	evalCtx := snap.EvalContext(sel)

	for _, ref := range prod.Modifiers {
		mtEntry := snap.Modifiers[ref.ModifierTypeID]
		mt := mtEntry.ModifierType

		typeState, err := modifierTypeState(ref, snap, evalCtx, fulfillment)
		if err != nil {
			return err
		}

		state := ModifierState{Options: make(map[types.OptionID]OptionState, len(mtEntry.Options))}
		countLeft, countRight := 0, 0

		for _, opt := range mtEntry.Options {
			po := sel.PlacementOf(mt.ID, opt.ID)
			os := OptionState{Placement: po.Placement, Qualifier: po.Qualifier}

			switch {
			case !typeState.Enabled():
				os.EnableLeft, os.EnableRight, os.EnableWhole = typeState, typeState, typeState
			default:
				if ds := disableStateForInterval(opt.Disabled, serviceTimeMillis); !ds.Enabled() {
					os.EnableLeft, os.EnableRight, os.EnableWhole = ds, ds, ds
					break
				}
				os.EnableWhole, err = EvaluateEnablement(opt, po.Placement, md.BakeCount, md.FlavorCount, types.PlacementWhole, prod, snap, evalCtx)
				if err != nil {
					return err
				}
				if !opt.Metadata.CanSplit {
					noSplit := EnableState{Reason: ReasonDisabledNoSplitting}
					os.EnableLeft, os.EnableRight = noSplit, noSplit
					break
				}
				os.EnableLeft, err = EvaluateEnablement(opt, po.Placement, md.BakeCount, md.FlavorCount, types.PlacementLeft, prod, snap, evalCtx)
				if err != nil {
					return err
				}
				os.EnableRight, err = EvaluateEnablement(opt, po.Placement, md.BakeCount, md.FlavorCount, types.PlacementRight, prod, snap, evalCtx)
				if err != nil {
					return err
				}
			}

			if os.EnableWhole.Enabled() || os.EnableLeft.Enabled() || os.EnableRight.Enabled() {
				state.HasSelectable = true
			}
			if po.Placement.OnLeft() {
				countLeft++
			}
			if po.Placement.OnRight() {
				countRight++
			}

			displayRef := ModifierOptionRef{ModifierTypeID: mt.ID, OptionID: opt.ID}
			switch po.Placement {
			case types.PlacementWhole:
				md.ExhaustiveModifiers.Whole = append(md.ExhaustiveModifiers.Whole, displayRef)
			case types.PlacementLeft:
				md.ExhaustiveModifiers.Left = append(md.ExhaustiveModifiers.Left, displayRef)
			case types.PlacementRight:
				md.ExhaustiveModifiers.Right = append(md.ExhaustiveModifiers.Right, displayRef)
			}

			state.Options[opt.ID] = os
		}

		state.MeetsMinimum = countLeft >= mt.MinSelected && countRight >= mt.MinSelected

		if state.HasSelectable && !state.MeetsMinimum {
			md.Incomplete = true
			if err := appendEmptyPlaceholder(md, mt, countLeft, countRight); err != nil {
				return err
			}
		}

		md.Modifiers[mt.ID] = state
	}

	return nil
}

// modifierTypeState resolves the type-level enable state: fulfillment
// disable takes precedence over the custom expression.
func modifierTypeState(ref types.ProductModifierRef, snap *catalog.Snapshot, evalCtx *expr.Context, fulfillment types.FulfillmentID) (EnableState, error) {
	for _, disabled := range ref.DisabledFulfillments {
		if disabled == fulfillment {
			return EnableState{Reason: ReasonDisabledFulfillment, FulfillmentID: fulfillment}, nil
		}
	}
	if ref.EnableExpressionID != "" {
		node, err := snap.Expression(ref.EnableExpressionID)
		if err != nil {
			return EnableState{}, err
		}
		ok, err := expr.EvaluateBool(node, evalCtx)
		if err != nil {
			return EnableState{}, fmt.Errorf("modifier enable expression %s: %w", ref.EnableExpressionID, err)
		}
		if !ok {
			return EnableState{Reason: ReasonDisabledFunction, ExpressionID: ref.EnableExpressionID}, nil
		}
	}
	return stateEnabled, nil
}

// appendEmptyPlaceholder records an unfilled-selection placeholder in the
// exhaustive list matching the side(s) of the shortfall, honoring the
// type's empty-display mode. Unknown modes are a configuration error.
func appendEmptyPlaceholder(md *Metadata, mt *types.ModifierType, countLeft, countRight int) error {
	mode := mt.DisplayFlags.EmptyDisplayAs
	switch mode {
	case types.EmptyDisplayOmit:
		return nil
	case types.EmptyDisplayYourChoiceOf, types.EmptyDisplayListChoices:
	default:
		return fmt.Errorf("%w: %d (modifier type %s)", types.ErrUnknownEmptyDisplayMode, mode, mt.ID)
	}

	placeholder := ModifierOptionRef{ModifierTypeID: mt.ID}
	shortLeft := countLeft < mt.MinSelected
	shortRight := countRight < mt.MinSelected
	switch {
	case shortLeft && shortRight:
		md.ExhaustiveModifiers.Whole = append(md.ExhaustiveModifiers.Whole, placeholder)
	case shortLeft:
		md.ExhaustiveModifiers.Left = append(md.ExhaustiveModifiers.Left, placeholder)
	case shortRight:
		md.ExhaustiveModifiers.Right = append(md.ExhaustiveModifiers.Right, placeholder)
	}
	return nil
}
