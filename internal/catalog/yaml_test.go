package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/intervals"
	"github.com/mealworks/menucore/internal/types"
)

const testCatalogYAML = `
products:
  - id: pizza
    price: "18.50"
    display_flags:
      flavor_max: 3
      bake_max: 6
      bake_differential_max: 2
      show_name_of_base_product: true
    modifiers:
      - modifier_type: size
      - modifier_type: toppings

instances:
  - id: pizza-base
    product: pizza
    ordinal: 0
    is_base: true
    display_name: Pizza
    short_code: PZ
    modifiers:
      - modifier_type: size
        options:
          - option: small
            placement: WHOLE

modifier_types:
  - id: size
    name: size
    display_name: Size
    min_selected: 1
    max_selected: 1
  - id: toppings
    name: toppings
    display_name: Toppings
    max_selected: 5
    display_flags:
      empty_display_as: YOUR_CHOICE_OF
      template: toppings
      multiple_item_separator: " & "

options:
  - id: small
    modifier_type: size
    display_name: Small
    short_code: SM
    price: "0"
    ordinal: 1
    metadata:
      can_split: false
  - id: mushroom
    modifier_type: toppings
    display_name: Mushroom
    short_code: MR
    price: "1.50"
    ordinal: 1
    enable_expression: always
    metadata:
      flavor_factor: 1
      bake_factor: 2
      can_split: true

fulfillments:
  - id: pickup
    display_name: Pickup
    time_step: 30
    min_lead_time: 20
    additional_unit_lead_time: 5
    operating_hours:
      monday:
        - [480, 1200]
    blocked_off:
      "2026-08-31":
        - [600, 660]

expressions:
  always:
    kind: const
    value: true
`

// Test the full YAML round trip through Build
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	prod := snap.Products["pizza"].Product
	if prod.Price.String() != "18.5" {
		t.Errorf("Price = %s, expected 18.5", prod.Price)
	}
	if prod.DisplayFlags.BakeMax != 6 || prod.DisplayFlags.BakeDifferentialMax != 2 {
		t.Errorf("DisplayFlags = %+v", prod.DisplayFlags)
	}

	base := snap.Products["pizza"].Base
	if base == nil || base.ID != "pizza-base" {
		t.Fatalf("Base = %v, expected pizza-base", base)
	}
	if got := base.Modifiers[0].Options[0]; got.OptionID != "small" || got.Placement != types.PlacementWhole {
		t.Errorf("base placement = %+v", got)
	}

	toppings := snap.Modifiers["toppings"].ModifierType
	if toppings.DisplayFlags.EmptyDisplayAs != types.EmptyDisplayYourChoiceOf {
		t.Errorf("EmptyDisplayAs = %v, expected YOUR_CHOICE_OF", toppings.DisplayFlags.EmptyDisplayAs)
	}
	if toppings.DisplayFlags.MultipleItemSeparator != " & " {
		t.Errorf("MultipleItemSeparator = %q", toppings.DisplayFlags.MultipleItemSeparator)
	}

	mushroom := snap.Options["mushroom"]
	if mushroom.Metadata.BakeFactor != 2 || !mushroom.Metadata.CanSplit {
		t.Errorf("mushroom metadata = %+v", mushroom.Metadata)
	}
	if mushroom.EnableExpressionID != "always" {
		t.Errorf("EnableExpressionID = %s", mushroom.EnableExpressionID)
	}

	pickup := snap.Fulfillments["pickup"]
	if pickup.TimeStep != 30 {
		t.Errorf("TimeStep = %d, expected 30", pickup.TimeStep)
	}
	if got := pickup.OperatingHours[1]; len(got) != 1 || got[0] != (intervals.Interval{Start: 480, End: 1200}) {
		t.Errorf("monday hours = %v", got)
	}
	if got := pickup.BlockedOff["2026-08-31"]; len(got) != 1 || got[0] != (intervals.Interval{Start: 600, End: 660}) {
		t.Errorf("blocked off = %v", got)
	}

	node, err := snap.Expression("always")
	if err != nil {
		t.Fatalf("Expression() error = %v", err)
	}
	if node.Kind != expr.KindConstLiteral || node.Literal != true {
		t.Errorf("expression = %+v", node)
	}
}

// Test loader failure modes
func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "invalid price",
			yaml: `
products:
  - id: pizza
    price: "free"
instances:
  - id: b
    product: pizza
    is_base: true
`,
		},
		{
			name: "unknown placement",
			yaml: `
products:
  - id: pizza
    price: "1"
modifier_types:
  - id: size
    name: size
options:
  - id: small
    modifier_type: size
    price: "0"
instances:
  - id: b
    product: pizza
    is_base: true
    modifiers:
      - modifier_type: size
        options:
          - option: small
            placement: MIDDLE
`,
		},
		{
			name: "unknown weekday",
			yaml: `
fulfillments:
  - id: pickup
    time_step: 30
    operating_hours:
      funday:
        - [480, 1200]
`,
		},
		{
			name: "interval not a pair",
			yaml: `
fulfillments:
  - id: pickup
    time_step: 30
    operating_hours:
      monday:
        - [480, 600, 700]
`,
		},
		{
			name: "unknown empty display mode",
			yaml: `
modifier_types:
  - id: size
    name: size
    display_flags:
      empty_display_as: HIDE
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() expected error, got nil")
			}
		})
	}
}

// Test expression document decoding for every kind
func TestDecodeExpression(t *testing.T) {
	tests := []struct {
		name     string
		doc      *ExpressionDocument
		expected expr.Kind
	}{
		{
			name:     "const",
			doc:      &ExpressionDocument{Kind: "const", Value: true},
			expected: expr.KindConstLiteral,
		},
		{
			name: "if",
			doc: &ExpressionDocument{
				Kind: "if",
				Test: &ExpressionDocument{Kind: "const", Value: true},
				Then: &ExpressionDocument{Kind: "const", Value: 1},
				Else: &ExpressionDocument{Kind: "const", Value: 2},
			},
			expected: expr.KindIfElse,
		},
		{
			name: "logical binary",
			doc: &ExpressionDocument{
				Kind:  "logical",
				Op:    "AND",
				Left:  &ExpressionDocument{Kind: "const", Value: true},
				Right: &ExpressionDocument{Kind: "const", Value: false},
			},
			expected: expr.KindLogical,
		},
		{
			name: "logical not omits right operand",
			doc: &ExpressionDocument{
				Kind: "logical",
				Op:   "NOT",
				Left: &ExpressionDocument{Kind: "const", Value: true},
			},
			expected: expr.KindLogical,
		},
		{
			name:     "placement",
			doc:      &ExpressionDocument{Kind: "placement", ModifierType: "toppings", Option: "mushroom"},
			expected: expr.KindModifierPlacement,
		},
		{
			name:     "has_any",
			doc:      &ExpressionDocument{Kind: "has_any", ModifierType: "toppings"},
			expected: expr.KindHasAnyOfModifierType,
		},
		{
			name:     "metadata",
			doc:      &ExpressionDocument{Kind: "metadata", Field: "WEIGHT", Side: "LEFT"},
			expected: expr.KindProductMetadata,
		},
		{
			name:     "jsonlogic",
			doc:      &ExpressionDocument{Kind: "jsonlogic", Rule: `{"==": [1, 1]}`},
			expected: expr.KindJsonLogic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := DecodeExpression(tt.doc)
			if err != nil {
				t.Fatalf("DecodeExpression() error = %v", err)
			}
			if node.Kind != tt.expected {
				t.Errorf("Kind = %v, expected %v", node.Kind, tt.expected)
			}
		})
	}
}

// Test malformed expression documents
func TestDecodeExpression_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  *ExpressionDocument
	}{
		{"nil document", nil},
		{"unknown kind", &ExpressionDocument{Kind: "magic"}},
		{"unknown logical op", &ExpressionDocument{Kind: "logical", Op: "XOR", Left: &ExpressionDocument{Kind: "const"}}},
		{"unknown metadata field", &ExpressionDocument{Kind: "metadata", Field: "SALT", Side: "LEFT"}},
		{"unknown metadata side", &ExpressionDocument{Kind: "metadata", Field: "WEIGHT", Side: "TOP"}},
		{"empty jsonlogic rule", &ExpressionDocument{Kind: "jsonlogic"}},
		{"if missing branch", &ExpressionDocument{Kind: "if", Test: &ExpressionDocument{Kind: "const"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeExpression(tt.doc); !errors.Is(err, types.ErrMalformedExpression) {
				t.Errorf("DecodeExpression() error = %v, expected ErrMalformedExpression", err)
			}
		})
	}
}
