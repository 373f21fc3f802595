// internal/product/naming.go
package product

import (
	"regexp"
	"strings"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Derived name assembly.
 *
 * Fast path: an unsplit selection matching a catalog instance exactly
 * inherits that instance's name, short name, and description verbatim.
 *
 * General path collects the "additional" options per half: those the
 * match matrix shows present on the selection but not on the matched
 * instance (AT_LEAST cells), plus the single-select carve-out - when the
 * product class hides its base product's name, an EXACT_MATCH single-select
 * option still surfaces so the size/style name is not lost. Additions
 * present on both halves of a whole placement fold into the whole list.
 *
 * Forms:
 *   unsplit:                  BaseName + whole additions
 *   split, same instance:     BaseName + whole (left | right)
 *   split, two instances:     ( leftName + additions | rightName + additions )
 *     with the literal placeholder U+2205 when a side has no name to show
 *
 * Both paths finish with {token} template substitution against the
 * modifier types' configured template strings.
 */

// namePlaceholder stands in for a side with no base name to show.
const namePlaceholder = "∅"

var templateTokenRE = regexp.MustCompile(`\{([^{}]*)\}`)

// addition is one option the selection carries beyond a matched instance.
type addition struct {
	mtID types.ModifierTypeID
	opt  *types.ModifierOption
}

// applyNaming fills Name, ShortName, Description, and AdditionalModifiers.
func applyNaming(md *Metadata, sel *types.ProductConfiguration, prod *types.Product, snap *catalog.Snapshot, matches [2]*matchedSide) error {
	if !md.IsSplit && matches[0].result.Match[0] == ExactMatch && matches[1].result.Match[1] == ExactMatch {
		inst := matches[0].inst
		md.Name = substituteTemplates(inst.DisplayName, sel, prod, snap)
		md.ShortName = inst.ShortCode
		md.Description = substituteTemplates(inst.Description, sel, prod, snap)
		return nil
	}

	adds := collectAdditions(sel, prod, snap, matches)

	var wholeAdds, leftAdds, rightAdds []addition
	inBoth := make(map[types.OptionID]bool)
	for _, a := range adds[0] {
		for _, b := range adds[1] {
			if a.opt.ID == b.opt.ID {
				inBoth[a.opt.ID] = true
			}
		}
	}
	for _, a := range adds[0] {
		if inBoth[a.opt.ID] && sel.PlacementOf(a.mtID, a.opt.ID).Placement == types.PlacementWhole {
			wholeAdds = append(wholeAdds, a)
		} else {
			leftAdds = append(leftAdds, a)
		}
	}
	for _, a := range adds[1] {
		if inBoth[a.opt.ID] && sel.PlacementOf(a.mtID, a.opt.ID).Placement == types.PlacementWhole {
			continue
		}
		rightAdds = append(rightAdds, a)
	}

	md.AdditionalModifiers = DisplayLists{
		Left:  refsOf(leftAdds),
		Right: refsOf(rightAdds),
		Whole: refsOf(wholeAdds),
	}

	leftInst, rightInst := matches[0].inst, matches[1].inst
	switch {
	case !md.IsSplit:
		md.Name = joinPlus(baseName(prod, leftInst, false), namesOf(wholeAdds, false))
		md.ShortName = joinPlus(baseName(prod, leftInst, true), namesOf(wholeAdds, true))
	case leftInst.ID == rightInst.ID:
		md.Name = splitSameInstanceName(baseName(prod, leftInst, false), namesOf(wholeAdds, false), namesOf(leftAdds, false), namesOf(rightAdds, false))
		md.ShortName = splitSameInstanceName(baseName(prod, leftInst, true), namesOf(wholeAdds, true), namesOf(leftAdds, true), namesOf(rightAdds, true))
	default:
		md.Name = splitTwoInstanceName(
			sideName(baseName(prod, leftInst, false), namesOf(adds[0], false)),
			sideName(baseName(prod, rightInst, false), namesOf(adds[1], false)))
		md.ShortName = splitTwoInstanceName(
			sideName(baseName(prod, leftInst, true), namesOf(adds[0], true)),
			sideName(baseName(prod, rightInst, true), namesOf(adds[1], true)))
	}

	md.Name = substituteTemplates(md.Name, sel, prod, snap)
	md.Description = substituteTemplates(leftInst.Description, sel, prod, snap)
	return nil
}

// collectAdditions walks the match matrices and gathers, per half, the
// options the selection carries beyond the matched instance.
func collectAdditions(sel *types.ProductConfiguration, prod *types.Product, snap *catalog.Snapshot, matches [2]*matchedSide) [2][]addition {
	var adds [2][]addition
	hideBase := !prod.DisplayFlags.ShowNameOfBaseProduct

	for mtIdx, ref := range prod.Modifiers {
		entry := snap.Modifiers[ref.ModifierTypeID]
		mt := entry.ModifierType
		single := mt.MinSelected == 1 && mt.MaxSelected == 1

		for optIdx, opt := range entry.Options {
			po := sel.PlacementOf(mt.ID, opt.ID)
			if po.Placement == types.PlacementNone {
				continue
			}
			for side := 0; side < 2; side++ {
				covers := po.Placement.OnLeft()
				if side == 1 {
					covers = po.Placement.OnRight()
				}
				if !covers {
					continue
				}
				cell := matches[side].result.Matrix[side][mtIdx][optIdx]
				if cell == AtLeast || (single && hideBase && cell == ExactMatch) {
					adds[side] = append(adds[side], addition{mtID: mt.ID, opt: opt})
				}
			}
		}
	}
	return adds
}

// baseName returns the matched instance's display name or short code, empty
// when the product class hides the base product's name.
func baseName(prod *types.Product, inst *types.ProductInstance, short bool) string {
	if inst.IsBase && !prod.DisplayFlags.ShowNameOfBaseProduct {
		return ""
	}
	if short {
		return inst.ShortCode
	}
	return inst.DisplayName
}

// namesOf renders additions to display names or short codes, honoring the
// per-option omit flags.
func namesOf(adds []addition, short bool) []string {
	names := make([]string, 0, len(adds))
	for _, a := range adds {
		if short {
			if a.opt.DisplayFlags.OmitFromShortname {
				continue
			}
			names = append(names, a.opt.ShortCode)
			continue
		}
		if a.opt.DisplayFlags.OmitFromName {
			continue
		}
		names = append(names, a.opt.DisplayName)
	}
	return names
}

// refsOf converts additions to display references.
func refsOf(adds []addition) []ModifierOptionRef {
	refs := make([]ModifierOptionRef, 0, len(adds))
	for _, a := range adds {
		refs = append(refs, ModifierOptionRef{ModifierTypeID: a.mtID, OptionID: a.opt.ID})
	}
	return refs
}

// joinPlus joins a base name and addition names with " + ", skipping empties.
func joinPlus(base string, names []string) string {
	parts := make([]string, 0, len(names)+1)
	if base != "" {
		parts = append(parts, base)
	}
	parts = append(parts, names...)
	return strings.Join(parts, " + ")
}

// splitSameInstanceName renders "Base + whole (left | right)".
func splitSameInstanceName(base string, whole, left, right []string) string {
	prefix := joinPlus(base, whole)
	if len(left) == 0 && len(right) == 0 {
		return prefix
	}
	sides := "(" + strings.Join(left, " + ") + " | " + strings.Join(right, " + ") + ")"
	if prefix == "" {
		return sides
	}
	return prefix + " " + sides
}

// sideName renders one half of a two-instance split, substituting the
// placeholder when the half has no base name to show.
func sideName(base string, names []string) string {
	if base == "" {
		base = namePlaceholder
	}
	return joinPlus(base, names)
}

// splitTwoInstanceName renders "( left | right )".
func splitTwoInstanceName(left, right string) string {
	return "( " + left + " | " + right + " )"
}

// substituteTemplates replaces every {token} whose token matches a modifier
// type's configured template string with that type's whole-placed option
// names, joined by the configured separator and wrapped in the configured
// prefix/suffix. Unmatched tokens replace with the empty string.
func substituteTemplates(s string, sel *types.ProductConfiguration, prod *types.Product, snap *catalog.Snapshot) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return templateTokenRE.ReplaceAllStringFunc(s, func(token string) string {
		name := token[1 : len(token)-1]
		for _, ref := range prod.Modifiers {
			entry := snap.Modifiers[ref.ModifierTypeID]
			mt := entry.ModifierType
			if mt.DisplayFlags.Template == "" || mt.DisplayFlags.Template != name {
				continue
			}

			var names []string
			for _, opt := range entry.Options {
				if opt.DisplayFlags.OmitFromName {
					continue
				}
				if sel.PlacementOf(mt.ID, opt.ID).Placement == types.PlacementWhole {
					names = append(names, opt.DisplayName)
				}
			}
			if len(names) == 0 {
				return ""
			}
			sep := mt.DisplayFlags.MultipleItemSeparator
			if sep == "" {
				sep = ", "
			}
			return mt.DisplayFlags.NonEmptyGroupPrefix + strings.Join(names, sep) + mt.DisplayFlags.NonEmptyGroupSuffix
		}
		return ""
	})
}
