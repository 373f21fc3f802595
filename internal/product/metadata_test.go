package product

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/types"
)

// pizzaSnapshot builds the shared test catalog: a pizza with a single-select
// size (small/large) and multi-select toppings (mushroom/pepperoni/sausage),
// bake cap 6, flavor cap 3, split differential cap 2.
func pizzaSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()

	products := []*types.Product{{
		ID:    "pizza",
		Price: decimal.RequireFromString("18.50"),
		DisplayFlags: types.ProductDisplayFlags{
			FlavorMax:             3,
			BakeMax:               6,
			BakeDifferentialMax:   2,
			ShowNameOfBaseProduct: true,
		},
		Modifiers: []types.ProductModifierRef{
			{ModifierTypeID: "size"},
			{ModifierTypeID: "toppings"},
		},
	}}

	modifierTypes := []*types.ModifierType{
		{ID: "size", Name: "size", DisplayName: "Size", MinSelected: 1, MaxSelected: 1},
		{ID: "toppings", Name: "toppings", DisplayName: "Toppings", MaxSelected: 5},
	}

	options := []*types.ModifierOption{
		{ID: "small", ModifierTypeID: "size", DisplayName: "Small", ShortCode: "SM", Ordinal: 1},
		{
			ID: "large", ModifierTypeID: "size", DisplayName: "Large", ShortCode: "LG", Ordinal: 2,
			Price: decimal.RequireFromString("4.00"),
		},
		{
			ID: "mushroom", ModifierTypeID: "toppings", DisplayName: "Mushroom", ShortCode: "MR", Ordinal: 1,
			Price:    decimal.RequireFromString("1.50"),
			Metadata: types.OptionMetadata{BakeFactor: 2, FlavorFactor: 1, CanSplit: true},
		},
		{
			ID: "pepperoni", ModifierTypeID: "toppings", DisplayName: "Pepperoni", ShortCode: "PP", Ordinal: 2,
			Price:    decimal.RequireFromString("2.00"),
			Metadata: types.OptionMetadata{BakeFactor: 1, FlavorFactor: 0.5, CanSplit: true},
		},
		{
			ID: "sausage", ModifierTypeID: "toppings", DisplayName: "Sausage", ShortCode: "SG", Ordinal: 3,
			Price:    decimal.RequireFromString("2.50"),
			Metadata: types.OptionMetadata{BakeFactor: 4, FlavorFactor: 1, CanSplit: true},
		},
	}

	instances := []*types.ProductInstance{
		{
			ID: "mushroom-pizza", ProductID: "pizza", Ordinal: 1,
			DisplayName: "Mushroom Pizza", ShortCode: "MRP",
			Modifiers: []types.InstanceModifier{
				{ModifierTypeID: "size", Options: []types.PlacedOption{{OptionID: "small", Placement: types.PlacementWhole}}},
				{ModifierTypeID: "toppings", Options: []types.PlacedOption{{OptionID: "mushroom", Placement: types.PlacementWhole}}},
			},
		},
		{
			ID: "pizza-base", ProductID: "pizza", Ordinal: 0, IsBase: true,
			DisplayName: "Pizza", ShortCode: "PZ",
			Modifiers: []types.InstanceModifier{
				{ModifierTypeID: "size", Options: []types.PlacedOption{{OptionID: "small", Placement: types.PlacementWhole}}},
			},
		},
	}

	snap, err := catalog.Build(products, instances, modifierTypes, options, nil, map[types.ExpressionID]*expr.Node{})
	if err != nil {
		t.Fatalf("catalog.Build() error = %v", err)
	}
	return snap
}

func selection(size types.OptionID, toppings ...types.PlacedOption) *types.ProductConfiguration {
	sel := &types.ProductConfiguration{
		ProductID: "pizza",
		Modifiers: map[types.ModifierTypeID][]types.PlacedOption{},
	}
	if size != "" {
		sel.Modifiers["size"] = []types.PlacedOption{{OptionID: size, Placement: types.PlacementWhole}}
	}
	if len(toppings) > 0 {
		sel.Modifiers["toppings"] = toppings
	}
	return sel
}

// Test the unmodified base selection: fast-path naming off the base instance
func TestGenerateMetadata_FastPathBase(t *testing.T) {
	snap := pizzaSnapshot(t)

	md, err := GenerateMetadata(selection("small"), snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if md.Name != "Pizza" {
		t.Errorf("Name = %q, expected Pizza", md.Name)
	}
	if md.ShortName != "PZ" {
		t.Errorf("ShortName = %q, expected PZ", md.ShortName)
	}
	if !md.Price.Equal(decimal.RequireFromString("18.50")) {
		t.Errorf("Price = %s, expected 18.50", md.Price)
	}
	if md.IsSplit {
		t.Error("IsSplit = true, expected false")
	}
	if md.Incomplete {
		t.Error("Incomplete = true, expected false")
	}
	if md.PI[0] != "pizza-base" || md.PI[1] != "pizza-base" {
		t.Errorf("PI = %v, expected pizza-base on both sides", md.PI)
	}

	sizeState := md.Modifiers["size"]
	if !sizeState.MeetsMinimum {
		t.Error("size MeetsMinimum = false, expected true")
	}
	small := sizeState.Options["small"]
	if small.Placement != types.PlacementWhole {
		t.Errorf("small Placement = %v, expected WHOLE", small.Placement)
	}
	if small.EnableLeft.Reason != ReasonDisabledNoSplitting {
		t.Errorf("small EnableLeft = %v, expected DISABLED_NO_SPLITTING", small.EnableLeft.Reason)
	}
}

// Test that a selection matching a named instance inherits its name
func TestGenerateMetadata_NamedInstance(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := selection("small", types.PlacedOption{OptionID: "mushroom", Placement: types.PlacementWhole})

	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if md.Name != "Mushroom Pizza" {
		t.Errorf("Name = %q, expected Mushroom Pizza", md.Name)
	}
	if md.ShortName != "MRP" {
		t.Errorf("ShortName = %q, expected MRP", md.ShortName)
	}
	if !md.Price.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("Price = %s, expected 20.00", md.Price)
	}
	if md.BakeCount != (SideCounts{2, 2}) {
		t.Errorf("BakeCount = %v, expected [2 2]", md.BakeCount)
	}
	if md.FlavorCount != (SideCounts{1, 1}) {
		t.Errorf("FlavorCount = %v, expected [1 1]", md.FlavorCount)
	}
	if md.PI[0] != "mushroom-pizza" || md.PI[1] != "mushroom-pizza" {
		t.Errorf("PI = %v, expected mushroom-pizza on both sides", md.PI)
	}
}

// Test additional-option naming against the base instance
func TestGenerateMetadata_Additions(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := selection("large", types.PlacedOption{OptionID: "pepperoni", Placement: types.PlacementWhole})

	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if md.Name != "Pizza + Large + Pepperoni" {
		t.Errorf("Name = %q, expected Pizza + Large + Pepperoni", md.Name)
	}
	if md.ShortName != "PZ + LG + PP" {
		t.Errorf("ShortName = %q, expected PZ + LG + PP", md.ShortName)
	}
	if !md.Price.Equal(decimal.RequireFromString("24.50")) {
		t.Errorf("Price = %s, expected 24.50", md.Price)
	}
	if len(md.AdditionalModifiers.Whole) != 2 {
		t.Errorf("AdditionalModifiers.Whole = %v, expected 2 entries", md.AdditionalModifiers.Whole)
	}
	if len(md.AdditionalModifiers.Left) != 0 || len(md.AdditionalModifiers.Right) != 0 {
		t.Errorf("side additions = %v / %v, expected none", md.AdditionalModifiers.Left, md.AdditionalModifiers.Right)
	}
}

// Test split naming with a different instance matched per half
func TestGenerateMetadata_SplitHalves(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := selection("small",
		types.PlacedOption{OptionID: "mushroom", Placement: types.PlacementLeft},
		types.PlacedOption{OptionID: "pepperoni", Placement: types.PlacementRight},
	)

	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if !md.IsSplit {
		t.Error("IsSplit = false, expected true")
	}
	if md.Name != "( Mushroom Pizza | Pizza + Pepperoni )" {
		t.Errorf("Name = %q, expected ( Mushroom Pizza | Pizza + Pepperoni )", md.Name)
	}
	if md.PI[0] != "mushroom-pizza" || md.PI[1] != "pizza-base" {
		t.Errorf("PI = %v, expected [mushroom-pizza pizza-base]", md.PI)
	}
	if md.BakeCount != (SideCounts{2, 1}) {
		t.Errorf("BakeCount = %v, expected [2 1]", md.BakeCount)
	}
	if md.FlavorCount != (SideCounts{1, 0.5}) {
		t.Errorf("FlavorCount = %v, expected [1 0.5]", md.FlavorCount)
	}
	if !md.Price.Equal(decimal.RequireFromString("22.00")) {
		t.Errorf("Price = %s, expected 22.00", md.Price)
	}
}

// Test hidden base product naming and the single-select carve-out
func TestGenerateMetadata_HiddenBaseName(t *testing.T) {
	snap := pizzaSnapshot(t)
	snap.Products["pizza"].Product.DisplayFlags.ShowNameOfBaseProduct = false

	sel := selection("small", types.PlacedOption{OptionID: "pepperoni", Placement: types.PlacementWhole})
	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	// The base name disappears, but the exact-matched single-select option
	// surfaces so the size is not lost.
	if md.Name != "Small + Pepperoni" {
		t.Errorf("Name = %q, expected Small + Pepperoni", md.Name)
	}
}

// Test per-option name omission
func TestGenerateMetadata_OmitFromName(t *testing.T) {
	snap := pizzaSnapshot(t)
	snap.Options["pepperoni"].DisplayFlags.OmitFromName = true

	sel := selection("large", types.PlacedOption{OptionID: "pepperoni", Placement: types.PlacementWhole})
	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if md.Name != "Pizza + Large" {
		t.Errorf("Name = %q, expected Pizza + Large", md.Name)
	}
	// The display list still carries the omitted option.
	if len(md.AdditionalModifiers.Whole) != 2 {
		t.Errorf("AdditionalModifiers.Whole = %v, expected 2 entries", md.AdditionalModifiers.Whole)
	}
}

// Test template substitution in instance names
func TestGenerateMetadata_Templates(t *testing.T) {
	snap := pizzaSnapshot(t)
	toppings := snap.Modifiers["toppings"].ModifierType
	toppings.DisplayFlags.Template = "toppings"
	toppings.DisplayFlags.NonEmptyGroupPrefix = "with "
	snap.Products["pizza"].Instances[0].DisplayName = "Pizza {toppings}"

	sel := selection("small", types.PlacedOption{OptionID: "mushroom", Placement: types.PlacementWhole})
	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	if md.Name != "Pizza with Mushroom" {
		t.Errorf("Name = %q, expected Pizza with Mushroom", md.Name)
	}
}

// Test incompleteness and empty-selection placeholders
func TestGenerateMetadata_Incomplete(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := selection("", types.PlacedOption{OptionID: "mushroom", Placement: types.PlacementWhole})

	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	if !md.Incomplete {
		t.Error("Incomplete = false, expected true")
	}
	if md.Modifiers["size"].MeetsMinimum {
		t.Error("size MeetsMinimum = true, expected false")
	}

	// OMIT mode appends no placeholder.
	for _, ref := range md.ExhaustiveModifiers.Whole {
		if ref.OptionID == "" {
			t.Error("unexpected placeholder in OMIT mode")
		}
	}

	// YOUR_CHOICE_OF appends a placeholder for the missing whole selection.
	snap.Modifiers["size"].ModifierType.DisplayFlags.EmptyDisplayAs = types.EmptyDisplayYourChoiceOf
	md, err = GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	found := false
	for _, ref := range md.ExhaustiveModifiers.Whole {
		if ref.ModifierTypeID == "size" && ref.OptionID == "" {
			found = true
		}
	}
	if !found {
		t.Error("expected placeholder for unselected size in YOUR_CHOICE_OF mode")
	}
}

// Test capacity disables surfacing in option states
func TestGenerateMetadata_CapacityDisables(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := selection("small",
		types.PlacedOption{OptionID: "mushroom", Placement: types.PlacementWhole},
		types.PlacedOption{OptionID: "pepperoni", Placement: types.PlacementWhole},
	)

	md, err := GenerateMetadata(sel, snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}

	// Bake load is 3 per side; sausage (factor 4) would reach 7 on the whole
	// and unbalance a single half past the differential cap.
	sausage := md.Modifiers["toppings"].Options["sausage"]
	if sausage.EnableWhole.Reason != ReasonDisabledWeight {
		t.Errorf("sausage EnableWhole = %v, expected DISABLED_WEIGHT", sausage.EnableWhole.Reason)
	}
	if sausage.EnableLeft.Reason != ReasonDisabledSplitDifferential {
		t.Errorf("sausage EnableLeft = %v, expected DISABLED_SPLIT_DIFFERENTIAL", sausage.EnableLeft.Reason)
	}

	mushroom := md.Modifiers["toppings"].Options["mushroom"]
	if !mushroom.EnableWhole.Enabled() {
		t.Errorf("mushroom EnableWhole = %v, expected ENABLED", mushroom.EnableWhole.Reason)
	}
}

// Test time-window disables surfacing in option states
func TestGenerateMetadata_TimeDisables(t *testing.T) {
	snap := pizzaSnapshot(t)
	snap.Options["sausage"].Disabled = &types.DisabledInterval{Start: 0, End: 2000}

	md, err := GenerateMetadata(selection("small"), snap, 1000, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	if got := md.Modifiers["toppings"].Options["sausage"].EnableWhole.Reason; got != ReasonDisabledTime {
		t.Errorf("sausage EnableWhole = %v, expected DISABLED_TIME", got)
	}

	md, err = GenerateMetadata(selection("small"), snap, 3000, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	if got := md.Modifiers["toppings"].Options["sausage"].EnableWhole.Reason; got != ReasonEnabled {
		t.Errorf("sausage EnableWhole after window = %v, expected ENABLED", got)
	}
}

// Test fulfillment-scoped modifier disables
func TestGenerateMetadata_FulfillmentDisables(t *testing.T) {
	snap := pizzaSnapshot(t)
	prod := snap.Products["pizza"].Product
	prod.Modifiers[1].DisabledFulfillments = []types.FulfillmentID{"delivery"}

	md, err := GenerateMetadata(selection("small"), snap, 0, "delivery")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	state := md.Modifiers["toppings"].Options["mushroom"]
	if state.EnableWhole.Reason != ReasonDisabledFulfillment {
		t.Errorf("mushroom EnableWhole = %v, expected DISABLED_FULFILLMENT_TYPE", state.EnableWhole.Reason)
	}
	if state.EnableWhole.FulfillmentID != "delivery" {
		t.Errorf("FulfillmentID = %s, expected delivery", state.EnableWhole.FulfillmentID)
	}

	md, err = GenerateMetadata(selection("small"), snap, 0, "pickup")
	if err != nil {
		t.Fatalf("GenerateMetadata() error = %v", err)
	}
	if got := md.Modifiers["toppings"].Options["mushroom"].EnableWhole.Reason; got != ReasonEnabled {
		t.Errorf("mushroom EnableWhole on pickup = %v, expected ENABLED", got)
	}
}

// Test unknown product rejection
func TestGenerateMetadata_UnknownProduct(t *testing.T) {
	snap := pizzaSnapshot(t)
	sel := &types.ProductConfiguration{ProductID: "calzone"}

	if _, err := GenerateMetadata(sel, snap, 0, "pickup"); !errors.Is(err, types.ErrUnknownProduct) {
		t.Errorf("GenerateMetadata() error = %v, expected ErrUnknownProduct", err)
	}
}
