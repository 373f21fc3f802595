package db

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mealworks/menucore/internal/catalog"
	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/intervals"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Catalog persistence.
 *
 * LoadSnapshot reads the full catalog from the database and assembles it
 * through catalog.Build, so database-sourced catalogs get the same
 * referential-integrity validation as file-sourced ones. SaveSnapshot is
 * the inverse, used by the seed command to populate a fresh database from
 * a YAML catalog.
 *
 * Scalar fields map to columns; nested collections (modifier attachments,
 * placements, operating hours, expressions) round-trip through the wire
 * documents in internal/catalog as JSON columns.
 */

type productRow struct {
	ID                    string  `db:"id"`
	Price                 string  `db:"price"`
	DisabledStart         *int64  `db:"disabled_start"`
	DisabledEnd           *int64  `db:"disabled_end"`
	FlavorMax             float64 `db:"flavor_max"`
	BakeMax               float64 `db:"bake_max"`
	BakeDifferentialMax   float64 `db:"bake_differential_max"`
	ShowNameOfBaseProduct bool    `db:"show_name_of_base_product"`
	DisabledFulfillments  []byte  `db:"disabled_fulfillments"`
	Modifiers             []byte  `db:"modifiers"`
}

type instanceRow struct {
	ID          string `db:"id"`
	ProductID   string `db:"product_id"`
	Ordinal     int    `db:"ordinal"`
	IsBase      bool   `db:"is_base"`
	DisplayName string `db:"display_name"`
	ShortCode   string `db:"short_code"`
	Description string `db:"description"`
	Modifiers   []byte `db:"modifiers"`
}

type modifierTypeRow struct {
	ID                    string `db:"id"`
	Name                  string `db:"name"`
	DisplayName           string `db:"display_name"`
	Ordinal               int    `db:"ordinal"`
	MinSelected           int    `db:"min_selected"`
	MaxSelected           int    `db:"max_selected"`
	EmptyDisplayAs        string `db:"empty_display_as"`
	Template              string `db:"template"`
	MultipleItemSeparator string `db:"multiple_item_separator"`
	NonEmptyGroupPrefix   string `db:"non_empty_group_prefix"`
	NonEmptyGroupSuffix   string `db:"non_empty_group_suffix"`
}

type optionRow struct {
	ID                string  `db:"id"`
	ModifierTypeID    string  `db:"modifier_type_id"`
	DisplayName       string  `db:"display_name"`
	ShortCode         string  `db:"short_code"`
	Description       string  `db:"description"`
	Price             string  `db:"price"`
	Ordinal           int     `db:"ordinal"`
	DisabledStart     *int64  `db:"disabled_start"`
	DisabledEnd       *int64  `db:"disabled_end"`
	FlavorFactor      float64 `db:"flavor_factor"`
	BakeFactor        float64 `db:"bake_factor"`
	CanSplit          bool    `db:"can_split"`
	EnableExpression  string  `db:"enable_expression"`
	OmitFromName      bool    `db:"omit_from_name"`
	OmitFromShortname bool    `db:"omit_from_shortname"`
}

type fulfillmentRow struct {
	ID                     string `db:"id"`
	DisplayName            string `db:"display_name"`
	TimeStep               int    `db:"time_step"`
	MinLeadTime            int    `db:"min_lead_time"`
	AdditionalUnitLeadTime int    `db:"additional_unit_lead_time"`
	OperatingHours         []byte `db:"operating_hours"`
	BlockedOff             []byte `db:"blocked_off"`
}

type expressionRow struct {
	ID         string `db:"id"`
	Definition []byte `db:"definition"`
}

// LoadSnapshot reads and assembles the full catalog from the database.
func LoadSnapshot(q *Queries) (*catalog.Snapshot, error) {
	products, err := loadProducts(q)
	if err != nil {
		return nil, err
	}
	instances, err := loadInstances(q)
	if err != nil {
		return nil, err
	}
	modifierTypes, err := loadModifierTypes(q)
	if err != nil {
		return nil, err
	}
	options, err := loadOptions(q)
	if err != nil {
		return nil, err
	}
	fulfillments, err := loadFulfillments(q)
	if err != nil {
		return nil, err
	}
	expressions, err := loadExpressions(q)
	if err != nil {
		return nil, err
	}

	return catalog.Build(products, instances, modifierTypes, options, fulfillments, expressions)
}

func loadProducts(q *Queries) ([]*types.Product, error) {
	var rows []productRow
	if err := q.Select("list-products", &rows); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]*types.Product, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid price %q: %w", row.ID, row.Price, err)
		}

		var fulfillmentIDs []string
		if err := json.Unmarshal(row.DisabledFulfillments, &fulfillmentIDs); err != nil {
			return nil, fmt.Errorf("product %s: disabled fulfillments: %w", row.ID, err)
		}
		var modDocs []catalog.ProductModifierDocument
		if err := json.Unmarshal(row.Modifiers, &modDocs); err != nil {
			return nil, fmt.Errorf("product %s: modifiers: %w", row.ID, err)
		}

		p := &types.Product{
			ID:       types.ProductID(row.ID),
			Price:    price,
			Disabled: disabledInterval(row.DisabledStart, row.DisabledEnd),
			DisplayFlags: types.ProductDisplayFlags{
				FlavorMax:             row.FlavorMax,
				BakeMax:               row.BakeMax,
				BakeDifferentialMax:   row.BakeDifferentialMax,
				ShowNameOfBaseProduct: row.ShowNameOfBaseProduct,
			},
			Modifiers: catalog.DecodeProductModifiers(modDocs),
		}
		for _, id := range fulfillmentIDs {
			p.DisabledFulfillments = append(p.DisabledFulfillments, types.FulfillmentID(id))
		}
		products = append(products, p)
	}
	return products, nil
}

func loadInstances(q *Queries) ([]*types.ProductInstance, error) {
	var rows []instanceRow
	if err := q.Select("list-product-instances", &rows); err != nil {
		return nil, fmt.Errorf("failed to load product instances: %w", err)
	}

	instances := make([]*types.ProductInstance, 0, len(rows))
	for _, row := range rows {
		var modDocs []catalog.InstanceModifierDocument
		if err := json.Unmarshal(row.Modifiers, &modDocs); err != nil {
			return nil, fmt.Errorf("instance %s: modifiers: %w", row.ID, err)
		}
		mods, err := catalog.DecodePlacements(modDocs)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", row.ID, err)
		}

		instances = append(instances, &types.ProductInstance{
			ID:          types.ProductInstanceID(row.ID),
			ProductID:   types.ProductID(row.ProductID),
			Ordinal:     row.Ordinal,
			IsBase:      row.IsBase,
			DisplayName: row.DisplayName,
			ShortCode:   row.ShortCode,
			Description: row.Description,
			Modifiers:   mods,
		})
	}
	return instances, nil
}

func loadModifierTypes(q *Queries) ([]*types.ModifierType, error) {
	var rows []modifierTypeRow
	if err := q.Select("list-modifier-types", &rows); err != nil {
		return nil, fmt.Errorf("failed to load modifier types: %w", err)
	}

	modifierTypes := make([]*types.ModifierType, 0, len(rows))
	for _, row := range rows {
		mode, err := catalog.ParseEmptyDisplayMode(row.EmptyDisplayAs)
		if err != nil {
			return nil, fmt.Errorf("modifier type %s: %w", row.ID, err)
		}
		modifierTypes = append(modifierTypes, &types.ModifierType{
			ID:          types.ModifierTypeID(row.ID),
			Name:        row.Name,
			DisplayName: row.DisplayName,
			Ordinal:     row.Ordinal,
			MinSelected: row.MinSelected,
			MaxSelected: row.MaxSelected,
			DisplayFlags: types.ModifierDisplayFlags{
				EmptyDisplayAs:        mode,
				Template:              row.Template,
				MultipleItemSeparator: row.MultipleItemSeparator,
				NonEmptyGroupPrefix:   row.NonEmptyGroupPrefix,
				NonEmptyGroupSuffix:   row.NonEmptyGroupSuffix,
			},
		})
	}
	return modifierTypes, nil
}

func loadOptions(q *Queries) ([]*types.ModifierOption, error) {
	var rows []optionRow
	if err := q.Select("list-modifier-options", &rows); err != nil {
		return nil, fmt.Errorf("failed to load modifier options: %w", err)
	}

	options := make([]*types.ModifierOption, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, fmt.Errorf("option %s: invalid price %q: %w", row.ID, row.Price, err)
		}
		options = append(options, &types.ModifierOption{
			ID:                 types.OptionID(row.ID),
			ModifierTypeID:     types.ModifierTypeID(row.ModifierTypeID),
			DisplayName:        row.DisplayName,
			ShortCode:          row.ShortCode,
			Description:        row.Description,
			Price:              price,
			Disabled:           disabledInterval(row.DisabledStart, row.DisabledEnd),
			Ordinal:            row.Ordinal,
			EnableExpressionID: types.ExpressionID(row.EnableExpression),
			Metadata: types.OptionMetadata{
				FlavorFactor: row.FlavorFactor,
				BakeFactor:   row.BakeFactor,
				CanSplit:     row.CanSplit,
			},
			DisplayFlags: types.OptionDisplayFlags{
				OmitFromName:      row.OmitFromName,
				OmitFromShortname: row.OmitFromShortname,
			},
		})
	}
	return options, nil
}

func loadFulfillments(q *Queries) ([]*types.Fulfillment, error) {
	var rows []fulfillmentRow
	if err := q.Select("list-fulfillments", &rows); err != nil {
		return nil, fmt.Errorf("failed to load fulfillments: %w", err)
	}

	fulfillments := make([]*types.Fulfillment, 0, len(rows))
	for _, row := range rows {
		var hoursDoc, blockedDoc map[string][][]int
		if err := json.Unmarshal(row.OperatingHours, &hoursDoc); err != nil {
			return nil, fmt.Errorf("fulfillment %s: operating hours: %w", row.ID, err)
		}
		if err := json.Unmarshal(row.BlockedOff, &blockedDoc); err != nil {
			return nil, fmt.Errorf("fulfillment %s: blocked off: %w", row.ID, err)
		}
		hours, err := catalog.DecodeOperatingHours(hoursDoc)
		if err != nil {
			return nil, fmt.Errorf("fulfillment %s: %w", row.ID, err)
		}
		blocked, err := catalog.DecodeBlockedOff(blockedDoc)
		if err != nil {
			return nil, fmt.Errorf("fulfillment %s: %w", row.ID, err)
		}

		fulfillments = append(fulfillments, &types.Fulfillment{
			ID:                     types.FulfillmentID(row.ID),
			DisplayName:            row.DisplayName,
			TimeStep:               row.TimeStep,
			MinLeadTime:            row.MinLeadTime,
			AdditionalUnitLeadTime: row.AdditionalUnitLeadTime,
			OperatingHours:         hours,
			BlockedOff:             blocked,
		})
	}
	return fulfillments, nil
}

func loadExpressions(q *Queries) (map[types.ExpressionID]*expr.Node, error) {
	var rows []expressionRow
	if err := q.Select("list-expressions", &rows); err != nil {
		return nil, fmt.Errorf("failed to load expressions: %w", err)
	}

	expressions := make(map[types.ExpressionID]*expr.Node, len(rows))
	for _, row := range rows {
		var doc catalog.ExpressionDocument
		if err := json.Unmarshal(row.Definition, &doc); err != nil {
			return nil, fmt.Errorf("expression %s: %w", row.ID, err)
		}
		node, err := catalog.DecodeExpression(&doc)
		if err != nil {
			return nil, fmt.Errorf("expression %s: %w", row.ID, err)
		}
		expressions[types.ExpressionID(row.ID)] = node
	}
	return expressions, nil
}

// SaveSnapshot writes a validated catalog snapshot into an empty database.
// Referenced tables insert first to satisfy foreign keys.
func SaveSnapshot(q *Queries, snap *catalog.Snapshot) error {
	for id, node := range snap.Expressions {
		doc, err := catalog.EncodeExpression(node)
		if err != nil {
			return fmt.Errorf("expression %s: %w", id, err)
		}
		definition, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("expression %s: %w", id, err)
		}
		if _, err := q.Exec("insert-expression", string(id), definition); err != nil {
			return fmt.Errorf("failed to insert expression %s: %w", id, err)
		}
	}

	for id, entry := range snap.Modifiers {
		mt := entry.ModifierType
		flags := mt.DisplayFlags
		if _, err := q.Exec("insert-modifier-type",
			string(mt.ID), mt.Name, mt.DisplayName, mt.Ordinal, mt.MinSelected, mt.MaxSelected,
			catalog.EmptyDisplayModeName(flags.EmptyDisplayAs), flags.Template,
			flags.MultipleItemSeparator, flags.NonEmptyGroupPrefix, flags.NonEmptyGroupSuffix,
		); err != nil {
			return fmt.Errorf("failed to insert modifier type %s: %w", id, err)
		}

		for _, opt := range entry.Options {
			start, end := disabledColumns(opt.Disabled)
			if _, err := q.Exec("insert-modifier-option",
				string(opt.ID), string(opt.ModifierTypeID), opt.DisplayName, opt.ShortCode,
				opt.Description, opt.Price.String(), opt.Ordinal, start, end,
				opt.Metadata.FlavorFactor, opt.Metadata.BakeFactor, opt.Metadata.CanSplit,
				string(opt.EnableExpressionID), opt.DisplayFlags.OmitFromName,
				opt.DisplayFlags.OmitFromShortname,
			); err != nil {
				return fmt.Errorf("failed to insert option %s: %w", opt.ID, err)
			}
		}
	}

	for id, entry := range snap.Products {
		p := entry.Product
		start, end := disabledColumns(p.Disabled)

		fulfillmentIDs := make([]string, 0, len(p.DisabledFulfillments))
		for _, f := range p.DisabledFulfillments {
			fulfillmentIDs = append(fulfillmentIDs, string(f))
		}
		disabledJSON, err := json.Marshal(fulfillmentIDs)
		if err != nil {
			return fmt.Errorf("product %s: %w", id, err)
		}
		modifiersJSON, err := json.Marshal(encodeProductModifiers(p.Modifiers))
		if err != nil {
			return fmt.Errorf("product %s: %w", id, err)
		}

		if _, err := q.Exec("insert-product",
			string(p.ID), p.Price.String(), start, end,
			p.DisplayFlags.FlavorMax, p.DisplayFlags.BakeMax, p.DisplayFlags.BakeDifferentialMax,
			p.DisplayFlags.ShowNameOfBaseProduct, disabledJSON, modifiersJSON,
		); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", id, err)
		}

		for _, inst := range entry.Instances {
			placementsJSON, err := json.Marshal(encodePlacements(inst.Modifiers))
			if err != nil {
				return fmt.Errorf("instance %s: %w", inst.ID, err)
			}
			if _, err := q.Exec("insert-product-instance",
				string(inst.ID), string(inst.ProductID), inst.Ordinal, inst.IsBase,
				inst.DisplayName, inst.ShortCode, inst.Description, placementsJSON,
			); err != nil {
				return fmt.Errorf("failed to insert instance %s: %w", inst.ID, err)
			}
		}
	}

	for id, f := range snap.Fulfillments {
		hoursJSON, err := json.Marshal(encodeOperatingHours(f.OperatingHours))
		if err != nil {
			return fmt.Errorf("fulfillment %s: %w", id, err)
		}
		blockedJSON, err := json.Marshal(encodeBlockedOff(f.BlockedOff))
		if err != nil {
			return fmt.Errorf("fulfillment %s: %w", id, err)
		}
		if _, err := q.Exec("insert-fulfillment",
			string(f.ID), f.DisplayName, f.TimeStep, f.MinLeadTime,
			f.AdditionalUnitLeadTime, hoursJSON, blockedJSON,
		); err != nil {
			return fmt.Errorf("failed to insert fulfillment %s: %w", id, err)
		}
	}

	return nil
}

// disabledInterval assembles a nullable column pair into a domain interval.
func disabledInterval(start, end *int64) *types.DisabledInterval {
	if start == nil || end == nil {
		return nil
	}
	return &types.DisabledInterval{Start: *start, End: *end}
}

// disabledColumns is the inverse of disabledInterval.
func disabledColumns(d *types.DisabledInterval) (*int64, *int64) {
	if d == nil {
		return nil, nil
	}
	return &d.Start, &d.End
}

func encodeProductModifiers(refs []types.ProductModifierRef) []catalog.ProductModifierDocument {
	docs := make([]catalog.ProductModifierDocument, 0, len(refs))
	for _, ref := range refs {
		doc := catalog.ProductModifierDocument{
			ModifierType:     string(ref.ModifierTypeID),
			EnableExpression: string(ref.EnableExpressionID),
		}
		for _, f := range ref.DisabledFulfillments {
			doc.DisabledFulfillments = append(doc.DisabledFulfillments, string(f))
		}
		docs = append(docs, doc)
	}
	return docs
}

func encodePlacements(mods []types.InstanceModifier) []catalog.InstanceModifierDocument {
	docs := make([]catalog.InstanceModifierDocument, 0, len(mods))
	for _, im := range mods {
		doc := catalog.InstanceModifierDocument{ModifierType: string(im.ModifierTypeID)}
		for _, po := range im.Options {
			doc.Options = append(doc.Options, catalog.PlacedOptionDocument{
				Option:    string(po.OptionID),
				Placement: po.Placement.String(),
				Qualifier: po.Qualifier.String(),
			})
		}
		docs = append(docs, doc)
	}
	return docs
}

var dayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

func encodeOperatingHours(hours [7][]intervals.Interval) map[string][][]int {
	out := make(map[string][][]int)
	for day, ivs := range hours {
		if len(ivs) == 0 {
			continue
		}
		out[dayNames[day]] = encodeIntervals(ivs)
	}
	return out
}

func encodeBlockedOff(blocked map[string][]intervals.Interval) map[string][][]int {
	out := make(map[string][][]int, len(blocked))
	for dateKey, ivs := range blocked {
		out[dateKey] = encodeIntervals(ivs)
	}
	return out
}

func encodeIntervals(ivs []intervals.Interval) [][]int {
	out := make([][]int, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, []int{iv.Start, iv.End})
	}
	return out
}
