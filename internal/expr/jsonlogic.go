// internal/expr/jsonlogic.go
package expr

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/mealworks/menucore/internal/types"
)

// jsonLogicPlacement is the serialized form of one placed option exposed to
// JsonLogic rules.
type jsonLogicPlacement struct {
	Option    string `json:"option"`
	Placement string `json:"placement"`
	Qualifier string `json:"qualifier"`
}

// jsonLogicContext is the data document a JsonLogic rule evaluates against.
type jsonLogicContext struct {
	Product struct {
		ID        string                          `json:"id"`
		Modifiers map[string][]jsonLogicPlacement `json:"modifiers"`
	} `json:"product"`
}

// evaluateJsonLogic applies a raw JsonLogic document to the serialized
// selection. A "null" result evaluates to nil; other results unmarshal to
// their natural JSON types (bool, float64, string).
func evaluateJsonLogic(rule []byte, ctx *Context) (any, error) {
	if len(rule) == 0 {
		return nil, fmt.Errorf("%w: empty jsonlogic document", types.ErrMalformedExpression)
	}

	doc := jsonLogicContext{}
	doc.Product.ID = string(ctx.Selection.ProductID)
	doc.Product.Modifiers = make(map[string][]jsonLogicPlacement, len(ctx.Selection.Modifiers))
	for mtID, placed := range ctx.Selection.Modifiers {
		entries := make([]jsonLogicPlacement, 0, len(placed))
		for _, po := range placed {
			entries = append(entries, jsonLogicPlacement{
				Option:    string(po.OptionID),
				Placement: po.Placement.String(),
				Qualifier: po.Qualifier.String(),
			})
		}
		doc.Product.Modifiers[string(mtID)] = entries
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize jsonlogic context: %w", err)
	}

	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(rule), bytes.NewReader(data), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedExpression, err)
	}

	trimmed := bytes.TrimSpace(result.Bytes())
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("failed to decode jsonlogic result: %w", err)
	}
	return out, nil
}
