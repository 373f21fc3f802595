// internal/expr/expr.go
package expr

import (
	"fmt"

	"github.com/mealworks/menucore/internal/types"
)

/*
 * Enable-expression evaluation.
 *
 * Catalog authors attach boolean expressions to modifier types and options;
 * the product engines call Evaluate to resolve them against the current
 * selection. The grammar is a closed tagged-variant tree with one case per
 * expression kind; evaluation is a single recursive switch, never open to
 * runtime extension.
 *
 * Kinds:
 *   - ConstLiteral: literal bool/number/string
 *   - IfElse: conditional on a boolean test
 *   - Logical: AND/OR/NOT and the six comparisons
 *   - ModifierPlacement: placement of one option in the selection
 *   - HasAnyOfModifierType: whether any option of a type is selected
 *   - ProductMetadata: accumulated flavor/weight total for one side
 *   - JsonLogic: raw JsonLogic document applied to the serialized selection
 *     (catalog-author escape hatch; still a single closed case)
 *
 * Evaluation is total over well-formed trees: malformed nodes surface
 * ErrMalformedExpression rather than defaulting. The evaluator never
 * re-enters the metadata engine.
 */

// Kind discriminates the expression variants.
type Kind int

const (
	KindConstLiteral Kind = iota
	KindIfElse
	KindLogical
	KindModifierPlacement
	KindHasAnyOfModifierType
	KindProductMetadata
	KindJsonLogic
)

// LogicalOp enumerates the operators of a Logical node.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNot
	LogicalEq
	LogicalNe
	LogicalGt
	LogicalGe
	LogicalLt
	LogicalLe
)

// MetadataField selects which running total a ProductMetadata node reads.
type MetadataField int

const (
	MetadataFlavor MetadataField = iota
	MetadataWeight
)

// MetadataSide selects which logical half a ProductMetadata node reads.
type MetadataSide int

const (
	MetadataLeft MetadataSide = iota
	MetadataRight
)

// IfElse is a conditional expression.
type IfElse struct {
	Test *Node
	Then *Node
	Else *Node
}

// Logical is a boolean or comparison expression. Right is nil for NOT.
type Logical struct {
	Op    LogicalOp
	Left  *Node
	Right *Node
}

// ModifierPlacementRef reads the placement of one option in the selection.
type ModifierPlacementRef struct {
	ModifierTypeID types.ModifierTypeID
	OptionID       types.OptionID
}

// HasAnyRef tests whether the selection places any option of a type.
type HasAnyRef struct {
	ModifierTypeID types.ModifierTypeID
}

// MetadataRef reads an accumulated capacity total from the selection.
type MetadataRef struct {
	Field MetadataField
	Side  MetadataSide
}

// Node is one expression tree node. Exactly the field matching Kind is set.
type Node struct {
	Kind      Kind
	Literal   any
	If        *IfElse
	Logical   *Logical
	Placement *ModifierPlacementRef
	HasAny    *HasAnyRef
	Metadata  *MetadataRef
	JsonLogic []byte
}

// Context carries the read-only product state an expression evaluates against.
type Context struct {
	Selection *types.ProductConfiguration
	// Options resolves option ids to their catalog definitions for
	// ProductMetadata totals and JsonLogic serialization.
	Options map[types.OptionID]*types.ModifierOption
}

// Evaluate resolves an expression tree to a bool, float64, string, or
// types.Placement value.
func Evaluate(n *Node, ctx *Context) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", types.ErrMalformedExpression)
	}

	switch n.Kind {
	case KindConstLiteral:
		return n.Literal, nil

	case KindIfElse:
		if n.If == nil {
			return nil, fmt.Errorf("%w: if/else without branches", types.ErrMalformedExpression)
		}
		test, err := EvaluateBool(n.If.Test, ctx)
		if err != nil {
			return nil, err
		}
		if test {
			return Evaluate(n.If.Then, ctx)
		}
		return Evaluate(n.If.Else, ctx)

	case KindLogical:
		return evaluateLogical(n.Logical, ctx)

	case KindModifierPlacement:
		if n.Placement == nil {
			return nil, fmt.Errorf("%w: placement without reference", types.ErrMalformedExpression)
		}
		po := ctx.Selection.PlacementOf(n.Placement.ModifierTypeID, n.Placement.OptionID)
		return po.Placement, nil

	case KindHasAnyOfModifierType:
		if n.HasAny == nil {
			return nil, fmt.Errorf("%w: has-any without reference", types.ErrMalformedExpression)
		}
		for _, po := range ctx.Selection.Modifiers[n.HasAny.ModifierTypeID] {
			if po.Placement != types.PlacementNone {
				return true, nil
			}
		}
		return false, nil

	case KindProductMetadata:
		if n.Metadata == nil {
			return nil, fmt.Errorf("%w: metadata without reference", types.ErrMalformedExpression)
		}
		return metadataTotal(n.Metadata, ctx)

	case KindJsonLogic:
		return evaluateJsonLogic(n.JsonLogic, ctx)

	default:
		return nil, fmt.Errorf("%w: kind %d", types.ErrMalformedExpression, n.Kind)
	}
}

// EvaluateBool resolves an expression and coerces the result to a boolean.
// Numbers are true when non-zero, strings when non-empty, placements when
// not NONE. A nil result is false.
func EvaluateBool(n *Node, ctx *Context) (bool, error) {
	v, err := Evaluate(n, ctx)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// evaluateLogical resolves AND/OR/NOT and the comparison operators.
// AND and OR short-circuit on the left operand.
func evaluateLogical(l *Logical, ctx *Context) (any, error) {
	if l == nil || l.Left == nil {
		return nil, fmt.Errorf("%w: logical without operands", types.ErrMalformedExpression)
	}

	switch l.Op {
	case LogicalNot:
		left, err := EvaluateBool(l.Left, ctx)
		if err != nil {
			return nil, err
		}
		return !left, nil
	case LogicalAnd:
		left, err := EvaluateBool(l.Left, ctx)
		if err != nil || !left {
			return false, err
		}
		return EvaluateBool(l.Right, ctx)
	case LogicalOr:
		left, err := EvaluateBool(l.Left, ctx)
		if err != nil || left {
			return left, err
		}
		return EvaluateBool(l.Right, ctx)
	}

	left, err := Evaluate(l.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(l.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch l.Op {
	case LogicalEq:
		return compareEqual(left, right), nil
	case LogicalNe:
		return !compareEqual(left, right), nil
	case LogicalGt:
		return compareNumeric(left, right) > 0, nil
	case LogicalGe:
		return compareNumeric(left, right) >= 0, nil
	case LogicalLt:
		return compareNumeric(left, right) < 0, nil
	case LogicalLe:
		return compareNumeric(left, right) <= 0, nil
	default:
		return nil, fmt.Errorf("%w: logical op %d", types.ErrMalformedExpression, l.Op)
	}
}

// metadataTotal accumulates the flavor or bake factor of every placed
// option covering the requested side.
func metadataTotal(ref *MetadataRef, ctx *Context) (float64, error) {
	total := 0.0
	for _, placed := range ctx.Selection.Modifiers {
		for _, po := range placed {
			covers := false
			switch ref.Side {
			case MetadataLeft:
				covers = po.Placement.OnLeft()
			case MetadataRight:
				covers = po.Placement.OnRight()
			}
			if !covers {
				continue
			}
			opt, ok := ctx.Options[po.OptionID]
			if !ok {
				return 0, fmt.Errorf("%w: %s", types.ErrUnknownOption, po.OptionID)
			}
			switch ref.Field {
			case MetadataFlavor:
				total += opt.Metadata.FlavorFactor
			case MetadataWeight:
				total += opt.Metadata.BakeFactor
			}
		}
	}
	return total, nil
}

// truthy converts an evaluation result to a boolean.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case types.Placement:
		return t != types.PlacementNone
	default:
		if n, ok := toFloat64(v); ok {
			return n != 0
		}
		return true
	}
}

// compareEqual performs equality comparison with numeric type coercion.
// Handles float64/int/int64/Placement mixing.
func compareEqual(a, b any) bool {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	if oka && okb {
		return na == nb
	}
	return a == b
}

// compareNumeric performs three-way numeric comparison (-1/0/1).
// Returns 0 for incomparable types.
func compareNumeric(a, b any) int {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	if !oka || !okb {
		return 0
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// toFloat64 converts numeric types (and placements) to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case types.Placement:
		return float64(n), true
	default:
		return 0, false
	}
}
