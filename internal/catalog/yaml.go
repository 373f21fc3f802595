// internal/catalog/yaml.go
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/intervals"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * File-based catalog snapshots.
 *
 * LoadFile reads a full catalog (products, instances, modifier types,
 * options, fulfillments, expressions) from one YAML document and assembles
 * it through Build, so file-sourced catalogs get the same integrity
 * validation as database-sourced ones.
 *
 * The wire structs double as the JSON codec for database columns holding
 * nested catalog data (yaml.v3 accepts JSON input), keeping one decode path
 * for both providers.
 */

type fileCatalog struct {
	Products      []fileProduct                 `yaml:"products"`
	Instances     []fileInstance                `yaml:"instances"`
	ModifierTypes []fileModifierType            `yaml:"modifier_types"`
	Options       []fileOption                  `yaml:"options"`
	Fulfillments  []fileFulfillment             `yaml:"fulfillments"`
	Expressions   map[string]ExpressionDocument `yaml:"expressions"`
}

type fileDisabled struct {
	Start int64 `yaml:"start"`
	End   int64 `yaml:"end"`
}

type fileProduct struct {
	ID           string `yaml:"id"`
	Price        string `yaml:"price"`
	Disabled     *fileDisabled
	Fulfillments []string `yaml:"disabled_fulfillments"`
	DisplayFlags struct {
		FlavorMax             float64 `yaml:"flavor_max"`
		BakeMax               float64 `yaml:"bake_max"`
		BakeDifferentialMax   float64 `yaml:"bake_differential_max"`
		ShowNameOfBaseProduct bool    `yaml:"show_name_of_base_product"`
	} `yaml:"display_flags"`
	Modifiers []ProductModifierDocument `yaml:"modifiers"`
}

// ProductModifierDocument is the serialized form of one product-to-modifier
// attachment.
type ProductModifierDocument struct {
	ModifierType         string   `yaml:"modifier_type" json:"modifier_type"`
	EnableExpression     string   `yaml:"enable_expression" json:"enable_expression"`
	DisabledFulfillments []string `yaml:"disabled_fulfillments" json:"disabled_fulfillments"`
}

// PlacedOptionDocument is the serialized form of one placed option.
type PlacedOptionDocument struct {
	Option    string `yaml:"option" json:"option"`
	Placement string `yaml:"placement" json:"placement"`
	Qualifier string `yaml:"qualifier" json:"qualifier"`
}

// InstanceModifierDocument is the serialized form of one modifier type's
// placements on a product instance.
type InstanceModifierDocument struct {
	ModifierType string                 `yaml:"modifier_type" json:"modifier_type"`
	Options      []PlacedOptionDocument `yaml:"options" json:"options"`
}

type fileInstance struct {
	ID          string                     `yaml:"id"`
	Product     string                     `yaml:"product"`
	Ordinal     int                        `yaml:"ordinal"`
	IsBase      bool                       `yaml:"is_base"`
	DisplayName string                     `yaml:"display_name"`
	ShortCode   string                     `yaml:"short_code"`
	Description string                     `yaml:"description"`
	Modifiers   []InstanceModifierDocument `yaml:"modifiers"`
}

type fileModifierType struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	DisplayName  string `yaml:"display_name"`
	Ordinal      int    `yaml:"ordinal"`
	MinSelected  int    `yaml:"min_selected"`
	MaxSelected  int    `yaml:"max_selected"`
	DisplayFlags struct {
		EmptyDisplayAs        string `yaml:"empty_display_as"`
		Template              string `yaml:"template"`
		MultipleItemSeparator string `yaml:"multiple_item_separator"`
		NonEmptyGroupPrefix   string `yaml:"non_empty_group_prefix"`
		NonEmptyGroupSuffix   string `yaml:"non_empty_group_suffix"`
	} `yaml:"display_flags"`
}

type fileOption struct {
	ID               string `yaml:"id"`
	ModifierType     string `yaml:"modifier_type"`
	DisplayName      string `yaml:"display_name"`
	ShortCode        string `yaml:"short_code"`
	Description      string `yaml:"description"`
	Price            string `yaml:"price"`
	Ordinal          int    `yaml:"ordinal"`
	Disabled         *fileDisabled
	EnableExpression string `yaml:"enable_expression"`
	Metadata         struct {
		FlavorFactor float64 `yaml:"flavor_factor"`
		BakeFactor   float64 `yaml:"bake_factor"`
		CanSplit     bool    `yaml:"can_split"`
	} `yaml:"metadata"`
	DisplayFlags struct {
		OmitFromName      bool `yaml:"omit_from_name"`
		OmitFromShortname bool `yaml:"omit_from_shortname"`
	} `yaml:"display_flags"`
}

type fileFulfillment struct {
	ID                     string             `yaml:"id"`
	DisplayName            string             `yaml:"display_name"`
	TimeStep               int                `yaml:"time_step"`
	MinLeadTime            int                `yaml:"min_lead_time"`
	AdditionalUnitLeadTime int                `yaml:"additional_unit_lead_time"`
	OperatingHours         map[string][][]int `yaml:"operating_hours"`
	BlockedOff             map[string][][]int `yaml:"blocked_off"`
}

// ExpressionDocument is the serialized form of one enable expression, shared
// between YAML catalogs and database JSON columns.
type ExpressionDocument struct {
	Kind         string              `yaml:"kind" json:"kind"`
	Value        any                 `yaml:"value" json:"value"`
	Test         *ExpressionDocument `yaml:"test" json:"test"`
	Then         *ExpressionDocument `yaml:"then" json:"then"`
	Else         *ExpressionDocument `yaml:"else" json:"else"`
	Op           string              `yaml:"op" json:"op"`
	Left         *ExpressionDocument `yaml:"left" json:"left"`
	Right        *ExpressionDocument `yaml:"right" json:"right"`
	ModifierType string              `yaml:"modifier_type" json:"modifier_type"`
	Option       string              `yaml:"option" json:"option"`
	Field        string              `yaml:"field" json:"field"`
	Side         string              `yaml:"side" json:"side"`
	Rule         string              `yaml:"rule" json:"rule"`
}

var weekdayNames = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

var logicalOps = map[string]expr.LogicalOp{
	"AND": expr.LogicalAnd, "OR": expr.LogicalOr, "NOT": expr.LogicalNot,
	"EQ": expr.LogicalEq, "NE": expr.LogicalNe,
	"GT": expr.LogicalGt, "GE": expr.LogicalGe,
	"LT": expr.LogicalLt, "LE": expr.LogicalLe,
}

// LoadFile reads and assembles a catalog snapshot from a YAML file.
func LoadFile(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file fileCatalog
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	products := make([]*types.Product, 0, len(file.Products))
	for _, fp := range file.Products {
		p, err := fp.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	instances := make([]*types.ProductInstance, 0, len(file.Instances))
	for _, fi := range file.Instances {
		inst, err := fi.toInstance()
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}

	modifierTypes := make([]*types.ModifierType, 0, len(file.ModifierTypes))
	for _, fm := range file.ModifierTypes {
		mt, err := fm.toModifierType()
		if err != nil {
			return nil, err
		}
		modifierTypes = append(modifierTypes, mt)
	}

	options := make([]*types.ModifierOption, 0, len(file.Options))
	for _, fo := range file.Options {
		opt, err := fo.toOption()
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	fulfillments := make([]*types.Fulfillment, 0, len(file.Fulfillments))
	for _, ff := range file.Fulfillments {
		f, err := ff.toFulfillment()
		if err != nil {
			return nil, err
		}
		fulfillments = append(fulfillments, f)
	}

	expressions := make(map[types.ExpressionID]*expr.Node, len(file.Expressions))
	for id, doc := range file.Expressions {
		node, err := DecodeExpression(&doc)
		if err != nil {
			return nil, fmt.Errorf("expression %s: %w", id, err)
		}
		expressions[types.ExpressionID(id)] = node
	}

	return Build(products, instances, modifierTypes, options, fulfillments, expressions)
}

func (fp *fileProduct) toProduct() (*types.Product, error) {
	price, err := decimal.NewFromString(fp.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: invalid price %q: %w", fp.ID, fp.Price, err)
	}
	p := &types.Product{
		ID:       types.ProductID(fp.ID),
		Price:    price,
		Disabled: fp.Disabled.toInterval(),
		DisplayFlags: types.ProductDisplayFlags{
			FlavorMax:             fp.DisplayFlags.FlavorMax,
			BakeMax:               fp.DisplayFlags.BakeMax,
			BakeDifferentialMax:   fp.DisplayFlags.BakeDifferentialMax,
			ShowNameOfBaseProduct: fp.DisplayFlags.ShowNameOfBaseProduct,
		},
	}
	for _, f := range fp.Fulfillments {
		p.DisabledFulfillments = append(p.DisabledFulfillments, types.FulfillmentID(f))
	}
	p.Modifiers = DecodeProductModifiers(fp.Modifiers)
	return p, nil
}

// DecodeProductModifiers converts wire-form product modifier attachments to
// domain types.
func DecodeProductModifiers(mods []ProductModifierDocument) []types.ProductModifierRef {
	out := make([]types.ProductModifierRef, 0, len(mods))
	for _, m := range mods {
		ref := types.ProductModifierRef{
			ModifierTypeID:     types.ModifierTypeID(m.ModifierType),
			EnableExpressionID: types.ExpressionID(m.EnableExpression),
		}
		for _, f := range m.DisabledFulfillments {
			ref.DisabledFulfillments = append(ref.DisabledFulfillments, types.FulfillmentID(f))
		}
		out = append(out, ref)
	}
	return out
}

func (fi *fileInstance) toInstance() (*types.ProductInstance, error) {
	inst := &types.ProductInstance{
		ID:          types.ProductInstanceID(fi.ID),
		ProductID:   types.ProductID(fi.Product),
		Ordinal:     fi.Ordinal,
		IsBase:      fi.IsBase,
		DisplayName: fi.DisplayName,
		ShortCode:   fi.ShortCode,
		Description: fi.Description,
	}
	mods, err := DecodePlacements(fi.Modifiers)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", fi.ID, err)
	}
	inst.Modifiers = mods
	return inst, nil
}

// DecodePlacements converts wire-form instance modifiers to domain types.
func DecodePlacements(mods []InstanceModifierDocument) ([]types.InstanceModifier, error) {
	out := make([]types.InstanceModifier, 0, len(mods))
	for _, m := range mods {
		im := types.InstanceModifier{ModifierTypeID: types.ModifierTypeID(m.ModifierType)}
		for _, po := range m.Options {
			placement, err := types.ParsePlacement(po.Placement)
			if err != nil {
				return nil, err
			}
			qualifier := types.QualifierRegular
			if po.Qualifier != "" {
				qualifier, err = types.ParseQualifier(po.Qualifier)
				if err != nil {
					return nil, err
				}
			}
			im.Options = append(im.Options, types.PlacedOption{
				OptionID:  types.OptionID(po.Option),
				Placement: placement,
				Qualifier: qualifier,
			})
		}
		out = append(out, im)
	}
	return out, nil
}

func (fm *fileModifierType) toModifierType() (*types.ModifierType, error) {
	mode, err := ParseEmptyDisplayMode(fm.DisplayFlags.EmptyDisplayAs)
	if err != nil {
		return nil, fmt.Errorf("modifier type %s: %w", fm.ID, err)
	}
	return &types.ModifierType{
		ID:          types.ModifierTypeID(fm.ID),
		Name:        fm.Name,
		DisplayName: fm.DisplayName,
		Ordinal:     fm.Ordinal,
		MinSelected: fm.MinSelected,
		MaxSelected: fm.MaxSelected,
		DisplayFlags: types.ModifierDisplayFlags{
			EmptyDisplayAs:        mode,
			Template:              fm.DisplayFlags.Template,
			MultipleItemSeparator: fm.DisplayFlags.MultipleItemSeparator,
			NonEmptyGroupPrefix:   fm.DisplayFlags.NonEmptyGroupPrefix,
			NonEmptyGroupSuffix:   fm.DisplayFlags.NonEmptyGroupSuffix,
		},
	}, nil
}

func (fo *fileOption) toOption() (*types.ModifierOption, error) {
	price, err := decimal.NewFromString(fo.Price)
	if err != nil {
		return nil, fmt.Errorf("option %s: invalid price %q: %w", fo.ID, fo.Price, err)
	}
	return &types.ModifierOption{
		ID:                 types.OptionID(fo.ID),
		ModifierTypeID:     types.ModifierTypeID(fo.ModifierType),
		DisplayName:        fo.DisplayName,
		ShortCode:          fo.ShortCode,
		Description:        fo.Description,
		Price:              price,
		Disabled:           fo.Disabled.toInterval(),
		Ordinal:            fo.Ordinal,
		EnableExpressionID: types.ExpressionID(fo.EnableExpression),
		Metadata: types.OptionMetadata{
			FlavorFactor: fo.Metadata.FlavorFactor,
			BakeFactor:   fo.Metadata.BakeFactor,
			CanSplit:     fo.Metadata.CanSplit,
		},
		DisplayFlags: types.OptionDisplayFlags{
			OmitFromName:      fo.DisplayFlags.OmitFromName,
			OmitFromShortname: fo.DisplayFlags.OmitFromShortname,
		},
	}, nil
}

func (ff *fileFulfillment) toFulfillment() (*types.Fulfillment, error) {
	f := &types.Fulfillment{
		ID:                     types.FulfillmentID(ff.ID),
		DisplayName:            ff.DisplayName,
		TimeStep:               ff.TimeStep,
		MinLeadTime:            ff.MinLeadTime,
		AdditionalUnitLeadTime: ff.AdditionalUnitLeadTime,
	}

	hours, err := DecodeOperatingHours(ff.OperatingHours)
	if err != nil {
		return nil, fmt.Errorf("fulfillment %s: %w", ff.ID, err)
	}
	f.OperatingHours = hours

	blocked, err := DecodeBlockedOff(ff.BlockedOff)
	if err != nil {
		return nil, fmt.Errorf("fulfillment %s: %w", ff.ID, err)
	}
	f.BlockedOff = blocked

	return f, nil
}

// DecodeOperatingHours converts weekday-keyed interval pairs to the
// weekday-indexed domain form.
func DecodeOperatingHours(byDay map[string][][]int) ([7][]intervals.Interval, error) {
	var out [7][]intervals.Interval
	for day, hours := range byDay {
		idx, ok := weekdayNames[strings.ToLower(day)]
		if !ok {
			return out, fmt.Errorf("unknown weekday %q", day)
		}
		ivs, err := toIntervals(hours)
		if err != nil {
			return out, err
		}
		out[idx] = ivs
	}
	return out, nil
}

// DecodeBlockedOff converts date-keyed interval pairs to the domain form.
func DecodeBlockedOff(byDate map[string][][]int) (map[string][]intervals.Interval, error) {
	out := make(map[string][]intervals.Interval, len(byDate))
	for dateKey, blocked := range byDate {
		ivs, err := toIntervals(blocked)
		if err != nil {
			return nil, err
		}
		out[dateKey] = ivs
	}
	return out, nil
}

func (fd *fileDisabled) toInterval() *types.DisabledInterval {
	if fd == nil {
		return nil
	}
	return &types.DisabledInterval{Start: fd.Start, End: fd.End}
}

func toIntervals(pairs [][]int) ([]intervals.Interval, error) {
	out := make([]intervals.Interval, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("interval must be a [start, end] pair, got %v", p)
		}
		out = append(out, intervals.Interval{Start: p[0], End: p[1]})
	}
	return out, nil
}

// ParseEmptyDisplayMode converts a canonical empty-display string to its
// enum value. Empty input defaults to OMIT.
func ParseEmptyDisplayMode(s string) (types.EmptyDisplayMode, error) {
	switch s {
	case "", "OMIT":
		return types.EmptyDisplayOmit, nil
	case "YOUR_CHOICE_OF":
		return types.EmptyDisplayYourChoiceOf, nil
	case "LIST_CHOICES":
		return types.EmptyDisplayListChoices, nil
	default:
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownEmptyDisplayMode, s)
	}
}

// EmptyDisplayModeName returns the canonical wire string of a mode.
func EmptyDisplayModeName(m types.EmptyDisplayMode) string {
	switch m {
	case types.EmptyDisplayYourChoiceOf:
		return "YOUR_CHOICE_OF"
	case types.EmptyDisplayListChoices:
		return "LIST_CHOICES"
	default:
		return "OMIT"
	}
}

// DecodeExpression converts a wire-form expression document to an
// evaluator node.
func DecodeExpression(doc *ExpressionDocument) (*expr.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: missing expression node", types.ErrMalformedExpression)
	}

	switch doc.Kind {
	case "const":
		return &expr.Node{Kind: expr.KindConstLiteral, Literal: doc.Value}, nil

	case "if":
		test, err := DecodeExpression(doc.Test)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpression(doc.Then)
		if err != nil {
			return nil, err
		}
		els, err := DecodeExpression(doc.Else)
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: expr.KindIfElse, If: &expr.IfElse{Test: test, Then: then, Else: els}}, nil

	case "logical":
		op, ok := logicalOps[doc.Op]
		if !ok {
			return nil, fmt.Errorf("%w: logical op %q", types.ErrMalformedExpression, doc.Op)
		}
		left, err := DecodeExpression(doc.Left)
		if err != nil {
			return nil, err
		}
		logical := &expr.Logical{Op: op, Left: left}
		if op != expr.LogicalNot {
			logical.Right, err = DecodeExpression(doc.Right)
			if err != nil {
				return nil, err
			}
		}
		return &expr.Node{Kind: expr.KindLogical, Logical: logical}, nil

	case "placement":
		return &expr.Node{Kind: expr.KindModifierPlacement, Placement: &expr.ModifierPlacementRef{
			ModifierTypeID: types.ModifierTypeID(doc.ModifierType),
			OptionID:       types.OptionID(doc.Option),
		}}, nil

	case "has_any":
		return &expr.Node{Kind: expr.KindHasAnyOfModifierType, HasAny: &expr.HasAnyRef{
			ModifierTypeID: types.ModifierTypeID(doc.ModifierType),
		}}, nil

	case "metadata":
		ref := &expr.MetadataRef{}
		switch doc.Field {
		case "FLAVOR":
			ref.Field = expr.MetadataFlavor
		case "WEIGHT":
			ref.Field = expr.MetadataWeight
		default:
			return nil, fmt.Errorf("%w: metadata field %q", types.ErrMalformedExpression, doc.Field)
		}
		switch doc.Side {
		case "LEFT":
			ref.Side = expr.MetadataLeft
		case "RIGHT":
			ref.Side = expr.MetadataRight
		default:
			return nil, fmt.Errorf("%w: metadata side %q", types.ErrMalformedExpression, doc.Side)
		}
		return &expr.Node{Kind: expr.KindProductMetadata, Metadata: ref}, nil

	case "jsonlogic":
		if doc.Rule == "" {
			return nil, fmt.Errorf("%w: empty jsonlogic rule", types.ErrMalformedExpression)
		}
		return &expr.Node{Kind: expr.KindJsonLogic, JsonLogic: []byte(doc.Rule)}, nil

	default:
		return nil, fmt.Errorf("%w: kind %q", types.ErrMalformedExpression, doc.Kind)
	}
}

// EncodeExpression converts an evaluator node back to its wire form.
// Inverse of DecodeExpression.
func EncodeExpression(node *expr.Node) (*ExpressionDocument, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: missing expression node", types.ErrMalformedExpression)
	}

	switch node.Kind {
	case expr.KindConstLiteral:
		return &ExpressionDocument{Kind: "const", Value: node.Literal}, nil

	case expr.KindIfElse:
		if node.If == nil {
			return nil, fmt.Errorf("%w: if/else without branches", types.ErrMalformedExpression)
		}
		test, err := EncodeExpression(node.If.Test)
		if err != nil {
			return nil, err
		}
		then, err := EncodeExpression(node.If.Then)
		if err != nil {
			return nil, err
		}
		els, err := EncodeExpression(node.If.Else)
		if err != nil {
			return nil, err
		}
		return &ExpressionDocument{Kind: "if", Test: test, Then: then, Else: els}, nil

	case expr.KindLogical:
		if node.Logical == nil {
			return nil, fmt.Errorf("%w: logical without operands", types.ErrMalformedExpression)
		}
		var opName string
		for name, op := range logicalOps {
			if op == node.Logical.Op {
				opName = name
				break
			}
		}
		if opName == "" {
			return nil, fmt.Errorf("%w: logical op %d", types.ErrMalformedExpression, node.Logical.Op)
		}
		left, err := EncodeExpression(node.Logical.Left)
		if err != nil {
			return nil, err
		}
		doc := &ExpressionDocument{Kind: "logical", Op: opName, Left: left}
		if node.Logical.Op != expr.LogicalNot {
			doc.Right, err = EncodeExpression(node.Logical.Right)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil

	case expr.KindModifierPlacement:
		if node.Placement == nil {
			return nil, fmt.Errorf("%w: placement without reference", types.ErrMalformedExpression)
		}
		return &ExpressionDocument{
			Kind:         "placement",
			ModifierType: string(node.Placement.ModifierTypeID),
			Option:       string(node.Placement.OptionID),
		}, nil

	case expr.KindHasAnyOfModifierType:
		if node.HasAny == nil {
			return nil, fmt.Errorf("%w: has-any without reference", types.ErrMalformedExpression)
		}
		return &ExpressionDocument{Kind: "has_any", ModifierType: string(node.HasAny.ModifierTypeID)}, nil

	case expr.KindProductMetadata:
		if node.Metadata == nil {
			return nil, fmt.Errorf("%w: metadata without reference", types.ErrMalformedExpression)
		}
		doc := &ExpressionDocument{Kind: "metadata"}
		switch node.Metadata.Field {
		case expr.MetadataFlavor:
			doc.Field = "FLAVOR"
		case expr.MetadataWeight:
			doc.Field = "WEIGHT"
		}
		switch node.Metadata.Side {
		case expr.MetadataLeft:
			doc.Side = "LEFT"
		case expr.MetadataRight:
			doc.Side = "RIGHT"
		}
		return doc, nil

	case expr.KindJsonLogic:
		return &ExpressionDocument{Kind: "jsonlogic", Rule: string(node.JsonLogic)}, nil

	default:
		return nil, fmt.Errorf("%w: kind %d", types.ErrMalformedExpression, node.Kind)
	}
}
