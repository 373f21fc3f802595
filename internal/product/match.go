// internal/product/match.go
package product

import (
	"fmt"
	"log"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Product comparison.
 *
 * Compares a candidate configuration (side A) against a catalog-defined
 * instance (side B) of the same product class, producing per-option match
 * cells on each logical half plus a mirror flag.
 *
 * Multi-select types classify every catalog option of the type through a
 * transcribed (placementA, placementB) constant table. Per half:
 *   EXACT_MATCH - both sides agree on this half
 *   AT_LEAST    - A carries the option on this half, B does not
 *   NO_MATCH    - B carries the option on this half, A does not
 * The mirror flag survives a pair only when A equals B for the option either
 * directly or with halves flipped; it is ANDed across all options and types.
 *
 * Single-select types compare the one selected option id per side; a
 * difference (or one unset side) marks that option's cell AT_LEAST on both
 * halves and clears mirror. Both sides unset logs a warning and assigns no
 * cells, leaving the EXACT_MATCH defaults. Known ambiguity carried as-is:
 * a completely unselected required modifier compares as matching.
 *
 * Cross-class comparisons short-circuit to NO_MATCH without a matrix.
 */

// MatchLevel orders how closely one half of a configuration matches an
// instance: NoMatch < AtLeast < ExactMatch.
type MatchLevel int

const (
	NoMatch MatchLevel = iota
	AtLeast
	ExactMatch
)

var matchLevelNames = [...]string{"NO_MATCH", "AT_LEAST", "EXACT_MATCH"}

// String returns the canonical name of the match level.
func (m MatchLevel) String() string {
	if m < NoMatch || m > ExactMatch {
		return fmt.Sprintf("MatchLevel(%d)", int(m))
	}
	return matchLevelNames[m]
}

// ComparableView adapts a selection or a catalog instance for comparison.
type ComparableView struct {
	ProductID types.ProductID
	// Placement returns the placed entry of an option, NONE when absent.
	Placement func(mtID types.ModifierTypeID, optID types.OptionID) types.PlacedOption
}

// ViewOfSelection adapts a caller-owned configuration.
func ViewOfSelection(sel *types.ProductConfiguration) ComparableView {
	return ComparableView{
		ProductID: sel.ProductID,
		Placement: sel.PlacementOf,
	}
}

// ViewOfInstance adapts a catalog-authored instance.
func ViewOfInstance(inst *types.ProductInstance) ComparableView {
	return ComparableView{
		ProductID: inst.ProductID,
		Placement: func(mtID types.ModifierTypeID, optID types.OptionID) types.PlacedOption {
			for _, im := range inst.Modifiers {
				if im.ModifierTypeID != mtID {
					continue
				}
				for _, po := range im.Options {
					if po.OptionID == optID {
						return po
					}
				}
			}
			return types.PlacedOption{OptionID: optID, Placement: types.PlacementNone}
		},
	}
}

// CompareResult is the outcome of comparing side A against side B.
type CompareResult struct {
	Mirror bool
	// Matrix is indexed [side][modifier index][option index], following the
	// product's modifier order and each type's catalog option order. Nil for
	// cross-class short-circuits.
	Matrix [2][][]MatchLevel
	// Match folds the matrix per side: the minimum cell level, with
	// ExactMatch as the identity of an empty matrix.
	Match [2]MatchLevel
}

// matchCell is one entry of the placement classification table.
type matchCell struct {
	left, right MatchLevel
	mirrorKept  bool
}

// placementMatch classifies a (placementA, placementB) pair per half.
// Transcribed truth table; see package comment for the encoding.
var placementMatch = [4][4]matchCell{
	types.PlacementNone: {
		types.PlacementNone:  {ExactMatch, ExactMatch, true},
		types.PlacementLeft:  {NoMatch, ExactMatch, false},
		types.PlacementRight: {ExactMatch, NoMatch, false},
		types.PlacementWhole: {NoMatch, NoMatch, false},
	},
	types.PlacementLeft: {
		types.PlacementNone:  {AtLeast, ExactMatch, false},
		types.PlacementLeft:  {ExactMatch, ExactMatch, true},
		types.PlacementRight: {AtLeast, NoMatch, true},
		types.PlacementWhole: {ExactMatch, NoMatch, false},
	},
	types.PlacementRight: {
		types.PlacementNone:  {ExactMatch, AtLeast, false},
		types.PlacementLeft:  {NoMatch, AtLeast, true},
		types.PlacementRight: {ExactMatch, ExactMatch, true},
		types.PlacementWhole: {NoMatch, ExactMatch, false},
	},
	types.PlacementWhole: {
		types.PlacementNone:  {AtLeast, AtLeast, false},
		types.PlacementLeft:  {ExactMatch, AtLeast, false},
		types.PlacementRight: {AtLeast, ExactMatch, false},
		types.PlacementWhole: {ExactMatch, ExactMatch, true},
	},
}

// Compare evaluates side A against side B over the product's modifier types.
func Compare(prod *types.Product, a, b ComparableView, snap *catalog.Snapshot) (CompareResult, error) {
	if a.ProductID != b.ProductID {
		return CompareResult{Mirror: false, Match: [2]MatchLevel{NoMatch, NoMatch}}, nil
	}

	result := CompareResult{
		Mirror: true,
		Match:  [2]MatchLevel{ExactMatch, ExactMatch},
	}
	for side := 0; side < 2; side++ {
		result.Matrix[side] = make([][]MatchLevel, len(prod.Modifiers))
	}

	for mtIdx, ref := range prod.Modifiers {
		entry, ok := snap.Modifiers[ref.ModifierTypeID]
		if !ok {
			return CompareResult{}, fmt.Errorf("%w: %s", types.ErrUnknownModifierType, ref.ModifierTypeID)
		}
		mt := entry.ModifierType

		for side := 0; side < 2; side++ {
			row := make([]MatchLevel, len(entry.Options))
			for i := range row {
				row[i] = ExactMatch
			}
			result.Matrix[side][mtIdx] = row
		}

		if mt.MinSelected == 1 && mt.MaxSelected == 1 {
			compareSingleSelect(&result, mtIdx, mt, entry, a, b)
			continue
		}

		for optIdx, opt := range entry.Options {
			pa := a.Placement(mt.ID, opt.ID).Placement
			pb := b.Placement(mt.ID, opt.ID).Placement
			cell := placementMatch[pa][pb]
			result.Matrix[0][mtIdx][optIdx] = cell.left
			result.Matrix[1][mtIdx][optIdx] = cell.right
			result.Mirror = result.Mirror && cell.mirrorKept
		}
	}

	for side := 0; side < 2; side++ {
		for _, row := range result.Matrix[side] {
			for _, cell := range row {
				if cell < result.Match[side] {
					result.Match[side] = cell
				}
			}
		}
	}

	return result, nil
}

// compareSingleSelect handles min=max=1 modifier types: the selected option
// ids on each side either agree (defaults stand) or the present option's
// cell drops to AT_LEAST on both halves and mirror clears.
func compareSingleSelect(result *CompareResult, mtIdx int, mt *types.ModifierType, entry *catalog.ModifierEntry, a, b ComparableView) {
	aIdx, bIdx := -1, -1
	for optIdx, opt := range entry.Options {
		if a.Placement(mt.ID, opt.ID).Placement != types.PlacementNone {
			aIdx = optIdx
		}
		if b.Placement(mt.ID, opt.ID).Placement != types.PlacementNone {
			bIdx = optIdx
		}
	}

	if aIdx == -1 && bIdx == -1 {
		// Ambiguity carried from the original design: nothing selected on
		// either side leaves the EXACT_MATCH defaults in place.
		log.Printf("single-select modifier type %s has no selection on either side", mt.ID)
		return
	}
	if aIdx == bIdx {
		return
	}

	marked := aIdx
	if marked == -1 {
		marked = bIdx
	}
	result.Matrix[0][mtIdx][marked] = AtLeast
	result.Matrix[1][mtIdx][marked] = AtLeast
	result.Mirror = false
}

// Equals reports whether a comparison identifies the two sides as the same
// product: a mirror pair or an exact match on both halves.
func Equals(r CompareResult) bool {
	return r.Mirror || (r.Match[0] == ExactMatch && r.Match[1] == ExactMatch)
}
