// internal/types/selection.go
package types

import "fmt"

/*
 * Selection types: the caller-owned product configuration the engines
 * evaluate against the catalog.
 *
 * A ProductConfiguration maps modifier type -> placed options. Keys need
 * not cover every modifier type of the product; an absent key means
 * nothing is selected for that type. Engines read selections and never
 * mutate them.
 *
 * Placement models two-sided products (e.g. pizza): an option sits on the
 * left half, the right half, or the whole product. Qualifier refines how
 * a placed option is applied (lite, heavy, on the side).
 */

// Placement locates a modifier option on a two-sided product.
type Placement int

const (
	PlacementNone Placement = iota
	PlacementLeft
	PlacementRight
	PlacementWhole
)

// placementNames maps Placement values to their canonical wire strings.
var placementNames = [...]string{"NONE", "LEFT", "RIGHT", "WHOLE"}

// String returns the canonical name of the placement.
func (p Placement) String() string {
	if p < PlacementNone || p > PlacementWhole {
		return fmt.Sprintf("Placement(%d)", int(p))
	}
	return placementNames[p]
}

// ParsePlacement converts a canonical placement string to its enum value.
// Unknown values are a configuration error, surfaced rather than defaulted.
func ParsePlacement(s string) (Placement, error) {
	for i, name := range placementNames {
		if s == name {
			return Placement(i), nil
		}
	}
	return PlacementNone, fmt.Errorf("%w: %q", ErrUnknownPlacement, s)
}

// OnLeft reports whether the placement covers the left half.
func (p Placement) OnLeft() bool {
	return p == PlacementLeft || p == PlacementWhole
}

// OnRight reports whether the placement covers the right half.
func (p Placement) OnRight() bool {
	return p == PlacementRight || p == PlacementWhole
}

// Qualifier refines how a placed option is applied.
type Qualifier int

const (
	QualifierRegular Qualifier = iota
	QualifierLite
	QualifierHeavy
	QualifierOnTheSide
)

var qualifierNames = [...]string{"REGULAR", "LITE", "HEAVY", "OTS"}

// String returns the canonical name of the qualifier.
func (q Qualifier) String() string {
	if q < QualifierRegular || q > QualifierOnTheSide {
		return fmt.Sprintf("Qualifier(%d)", int(q))
	}
	return qualifierNames[q]
}

// ParseQualifier converts a canonical qualifier string to its enum value.
func ParseQualifier(s string) (Qualifier, error) {
	for i, name := range qualifierNames {
		if s == name {
			return Qualifier(i), nil
		}
	}
	return QualifierRegular, fmt.Errorf("%w: %q", ErrUnknownQualifier, s)
}

// PlacedOption is one option selection: which option, where, and how.
type PlacedOption struct {
	OptionID  OptionID
	Placement Placement
	Qualifier Qualifier
}

// ProductConfiguration is a customer's configuration of one product class.
type ProductConfiguration struct {
	ProductID ProductID
	Modifiers map[ModifierTypeID][]PlacedOption
}

// PlacementOf returns the placed entry for the given option, or a NONE
// placement when the option is not part of the selection.
func (c *ProductConfiguration) PlacementOf(mtID ModifierTypeID, optID OptionID) PlacedOption {
	for _, po := range c.Modifiers[mtID] {
		if po.OptionID == optID {
			return po
		}
	}
	return PlacedOption{OptionID: optID, Placement: PlacementNone}
}
