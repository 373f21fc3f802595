// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"sort"

	"github.com/mealworks/menucore/internal/expr"
	"github.com/mealworks/menucore/internal/types"
)

/*
 * Catalog snapshot assembly and integrity validation.
 *
 * A Snapshot is the indexed, read-only view of one catalog version that the
 * product and availability engines compute against. Build validates once at
 * assembly time so the engines can assume referential integrity:
 *
 *   1. Every modifier type referenced by a product exists
 *   2. Every option referenced by an instance exists and belongs to the
 *      declared modifier type
 *   3. Every enable-expression id resolves
 *   4. Exactly one base instance per product
 *
 * Instance ordering is load-bearing: the metadata engine's best-match scan
 * takes the first instance that resolves each side, so instances are sorted
 * most-specific-first (ascending ordinal) with the base instance forced
 * last. Options within a modifier type sort by ordinal; that order defines
 * match-matrix column indices.
 *
 * Snapshots are immutable after Build. Callers replacing a snapshot between
 * computations must hold one reference for a computation's duration; the
 * snapshot itself provides no versioning or locking.
 */

// ModifierEntry pairs a modifier type with its options in catalog order.
type ModifierEntry struct {
	ModifierType *types.ModifierType
	Options      []*types.ModifierOption
}

// ProductEntry pairs a product class with its ordered instances.
type ProductEntry struct {
	Product *types.Product
	// Instances are sorted most-specific-first, base last.
	Instances []*types.ProductInstance
	Base      *types.ProductInstance
}

// Snapshot is the indexed view of one catalog version.
type Snapshot struct {
	Products     map[types.ProductID]*ProductEntry
	Modifiers    map[types.ModifierTypeID]*ModifierEntry
	Options      map[types.OptionID]*types.ModifierOption
	Fulfillments map[types.FulfillmentID]*types.Fulfillment
	Expressions  map[types.ExpressionID]*expr.Node
}

// Build indexes and validates catalog data into a Snapshot.
func Build(
	products []*types.Product,
	instances []*types.ProductInstance,
	modifierTypes []*types.ModifierType,
	options []*types.ModifierOption,
	fulfillments []*types.Fulfillment,
	expressions map[types.ExpressionID]*expr.Node,
) (*Snapshot, error) {
	if expressions == nil {
		expressions = map[types.ExpressionID]*expr.Node{}
	}

	snap := &Snapshot{
		Products:     make(map[types.ProductID]*ProductEntry, len(products)),
		Modifiers:    make(map[types.ModifierTypeID]*ModifierEntry, len(modifierTypes)),
		Options:      make(map[types.OptionID]*types.ModifierOption, len(options)),
		Fulfillments: make(map[types.FulfillmentID]*types.Fulfillment, len(fulfillments)),
		Expressions:  expressions,
	}

	for _, mt := range modifierTypes {
		snap.Modifiers[mt.ID] = &ModifierEntry{ModifierType: mt}
	}
	for _, opt := range options {
		entry, ok := snap.Modifiers[opt.ModifierTypeID]
		if !ok {
			return nil, fmt.Errorf("%w: %s (option %s)", types.ErrUnknownModifierType, opt.ModifierTypeID, opt.ID)
		}
		entry.Options = append(entry.Options, opt)
		snap.Options[opt.ID] = opt
	}
	for _, entry := range snap.Modifiers {
		opts := entry.Options
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Ordinal < opts[j].Ordinal })
	}

	for _, f := range fulfillments {
		snap.Fulfillments[f.ID] = f
	}

	for _, p := range products {
		for _, ref := range p.Modifiers {
			if _, ok := snap.Modifiers[ref.ModifierTypeID]; !ok {
				return nil, fmt.Errorf("%w: %s (product %s)", types.ErrUnknownModifierType, ref.ModifierTypeID, p.ID)
			}
			if ref.EnableExpressionID != "" {
				if _, ok := expressions[ref.EnableExpressionID]; !ok {
					return nil, fmt.Errorf("%w: %s (product %s)", types.ErrUnknownExpression, ref.EnableExpressionID, p.ID)
				}
			}
		}
		snap.Products[p.ID] = &ProductEntry{Product: p}
	}

	for _, opt := range options {
		if opt.EnableExpressionID != "" {
			if _, ok := expressions[opt.EnableExpressionID]; !ok {
				return nil, fmt.Errorf("%w: %s (option %s)", types.ErrUnknownExpression, opt.EnableExpressionID, opt.ID)
			}
		}
	}

	for _, inst := range instances {
		entry, ok := snap.Products[inst.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s (instance %s)", types.ErrUnknownProduct, inst.ProductID, inst.ID)
		}
		for _, im := range inst.Modifiers {
			mtEntry, ok := snap.Modifiers[im.ModifierTypeID]
			if !ok {
				return nil, fmt.Errorf("%w: %s (instance %s)", types.ErrUnknownModifierType, im.ModifierTypeID, inst.ID)
			}
			for _, po := range im.Options {
				opt, ok := snap.Options[po.OptionID]
				if !ok {
					return nil, fmt.Errorf("%w: %s (instance %s)", types.ErrUnknownOption, po.OptionID, inst.ID)
				}
				if opt.ModifierTypeID != mtEntry.ModifierType.ID {
					return nil, fmt.Errorf("option %s does not belong to modifier type %s (instance %s)",
						po.OptionID, im.ModifierTypeID, inst.ID)
				}
			}
		}
		if inst.IsBase {
			if entry.Base != nil {
				return nil, fmt.Errorf("%w: %s", types.ErrDuplicateBaseInstance, inst.ProductID)
			}
			entry.Base = inst
		}
		entry.Instances = append(entry.Instances, inst)
	}

	for id, entry := range snap.Products {
		if entry.Base == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingBaseInstance, id)
		}
		sortInstances(entry)
	}

	return snap, nil
}

// sortInstances orders instances most-specific-first by ordinal with the
// base instance forced last, the scan order the metadata engine requires.
func sortInstances(entry *ProductEntry) {
	ivs := entry.Instances
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].IsBase != ivs[j].IsBase {
			return ivs[j].IsBase
		}
		return ivs[i].Ordinal < ivs[j].Ordinal
	})
}

// Expression resolves an expression id, failing fast on dangling references.
func (s *Snapshot) Expression(id types.ExpressionID) (*expr.Node, error) {
	node, ok := s.Expressions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownExpression, id)
	}
	return node, nil
}

// EvalContext builds the expression evaluation context for a selection.
func (s *Snapshot) EvalContext(sel *types.ProductConfiguration) *expr.Context {
	return &expr.Context{Selection: sel, Options: s.Options}
}
