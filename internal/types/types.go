// Package types provides the catalog data model shared across menucore components.
//
// The catalog is externally owned and read-only to the engines: products,
// modifier types, modifier options, named product instances, and fulfillment
// configuration. Engines in internal/product and internal/availability never
// mutate these structures; they compute fresh derived state per call.
//
// Referential integrity (every option/modifier-type id referenced by a
// selection or product exists in the catalog) is the catalog provider's
// responsibility and is validated once at snapshot assembly in
// internal/catalog, not re-checked per computation.
package types

import (
	"github.com/shopspring/decimal"

	"github.com/mealworks/menucore/internal/intervals"
)

// ProductID identifies a product class (e.g. "Pizza").
// String alias enables type safety while maintaining JSON string serialization.
type ProductID string

// ProductInstanceID identifies a named, catalog-authored configuration of a product.
type ProductInstanceID string

// ModifierTypeID identifies a group of selectable options (e.g. "Toppings").
type ModifierTypeID string

// OptionID identifies a single modifier option (e.g. "Mushroom").
type OptionID string

// FulfillmentID identifies a fulfillment service (e.g. pickup, delivery).
type FulfillmentID string

// ExpressionID identifies a catalog-authored enable expression.
type ExpressionID string

// DisabledInterval marks an entity disabled during [Start, End], both epoch
// milliseconds. Start > End means blanket-disabled (disabled at all times).
type DisabledInterval struct {
	Start int64
	End   int64
}

// Blanket reports whether the interval disables the entity unconditionally.
func (d *DisabledInterval) Blanket() bool {
	return d.Start > d.End
}

// Covers reports whether the interval disables the entity at the given time.
// Blanket intervals cover every instant.
func (d *DisabledInterval) Covers(atMillis int64) bool {
	if d.Blanket() {
		return true
	}
	return d.Start <= atMillis && atMillis <= d.End
}

// ProductDisplayFlags carries the capacity limits and naming behavior of a
// product class.
type ProductDisplayFlags struct {
	// FlavorMax caps the summed flavor factor of placed options per side.
	FlavorMax float64
	// BakeMax caps the summed bake factor of placed options per side.
	BakeMax float64
	// BakeDifferentialMax caps |left bake - right bake| for split products.
	BakeDifferentialMax float64
	// ShowNameOfBaseProduct controls whether the base instance's display
	// name participates in derived names, or only option names do.
	ShowNameOfBaseProduct bool
}

// ProductModifierRef attaches a modifier type to a product class.
// Order within Product.Modifiers is the catalog display order and drives
// both metadata assembly and match-matrix indexing.
type ProductModifierRef struct {
	ModifierTypeID       ModifierTypeID
	EnableExpressionID   ExpressionID // empty = always enabled
	DisabledFulfillments []FulfillmentID
}

// Product is a product class: the purchasable concept a customer configures.
type Product struct {
	ID                   ProductID
	Price                decimal.Decimal
	Disabled             *DisabledInterval
	DisabledFulfillments []FulfillmentID
	DisplayFlags         ProductDisplayFlags
	Modifiers            []ProductModifierRef
}

// EmptyDisplayMode controls how a modifier type with no selection renders.
type EmptyDisplayMode int

const (
	EmptyDisplayOmit EmptyDisplayMode = iota
	EmptyDisplayYourChoiceOf
	EmptyDisplayListChoices
)

// ModifierDisplayFlags carries the rendering configuration of a modifier type.
type ModifierDisplayFlags struct {
	EmptyDisplayAs EmptyDisplayMode
	// Template names the {token} this type substitutes into instance
	// name/description strings. Empty = no substitution.
	Template              string
	MultipleItemSeparator string
	NonEmptyGroupPrefix   string
	NonEmptyGroupSuffix   string
}

// ModifierType is a named group of selectable options with selection bounds.
type ModifierType struct {
	ID           ModifierTypeID
	Name         string
	DisplayName  string
	Ordinal      int
	MinSelected  int
	MaxSelected  int
	DisplayFlags ModifierDisplayFlags
}

// OptionMetadata carries the per-option weights consumed by enablement checks.
type OptionMetadata struct {
	FlavorFactor float64
	BakeFactor   float64
	CanSplit     bool
}

// OptionDisplayFlags controls participation of an option in derived names.
type OptionDisplayFlags struct {
	OmitFromName      bool
	OmitFromShortname bool
}

// ModifierOption is a single selectable option within a modifier type.
type ModifierOption struct {
	ID                 OptionID
	ModifierTypeID     ModifierTypeID
	DisplayName        string
	ShortCode          string
	Description        string
	Price              decimal.Decimal
	Disabled           *DisabledInterval
	Ordinal            int
	Metadata           OptionMetadata
	EnableExpressionID ExpressionID // empty = always enabled
	DisplayFlags       OptionDisplayFlags
}

// InstanceModifier lists the placed options of one modifier type on a
// catalog-authored product instance.
type InstanceModifier struct {
	ModifierTypeID ModifierTypeID
	Options        []PlacedOption
}

// ProductInstance is a named, catalog-authored configuration of a product
// class (e.g. "Meatza"). Exactly one instance per product has IsBase=true;
// its absence is a catalog integrity error.
//
// Instances must be supplied most-specific-first with the base instance
// last: the metadata engine's best-match search takes the first instance
// whose comparison resolves each side, so scan order determines which name
// a selection inherits. internal/catalog enforces this ordering.
type ProductInstance struct {
	ID          ProductInstanceID
	ProductID   ProductID
	Ordinal     int
	IsBase      bool
	DisplayName string
	ShortCode   string
	Description string
	Modifiers   []InstanceModifier
}

// Fulfillment is the scheduling configuration of one service.
// Operating hours are indexed by weekday (time.Weekday order, Sunday=0);
// blocked-off intervals are keyed by date string (DateKeyLayout).
type Fulfillment struct {
	ID          FulfillmentID
	DisplayName string
	// TimeStep is the slot granularity in minutes.
	TimeStep int
	// MinLeadTime is the minimum minutes between order placement and the
	// first offered slot.
	MinLeadTime int
	// AdditionalUnitLeadTime adds lead minutes per order unit beyond the first.
	AdditionalUnitLeadTime int
	OperatingHours         [7][]intervals.Interval
	BlockedOff             map[string][]intervals.Interval
}

// DateKeyLayout is the time.Format layout for Fulfillment.BlockedOff keys.
const DateKeyLayout = "2006-01-02"
