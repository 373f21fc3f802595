package types

import "errors"

// Sentinel errors for menucore operations.
var (
	// ErrMissingBaseInstance indicates a product class with no IsBase instance.
	// The product must be excluded from the usable menu.
	ErrMissingBaseInstance = errors.New("product has no base instance")

	// ErrDuplicateBaseInstance indicates more than one IsBase instance for a product.
	ErrDuplicateBaseInstance = errors.New("product has multiple base instances")

	// ErrUnresolvedMatch indicates the best-match search finished without
	// resolving both sides. Should be impossible with a valid base instance.
	ErrUnresolvedMatch = errors.New("no catalog instance matched the selection")

	// ErrUnknownPlacement indicates an unrecognized placement name.
	ErrUnknownPlacement = errors.New("unknown placement")

	// ErrUnknownQualifier indicates an unrecognized qualifier name.
	ErrUnknownQualifier = errors.New("unknown qualifier")

	// ErrUnknownEmptyDisplayMode indicates an unrecognized empty-display mode.
	ErrUnknownEmptyDisplayMode = errors.New("unknown empty display mode")

	// ErrUnknownProduct indicates a reference to a product id not in the catalog.
	ErrUnknownProduct = errors.New("product not in catalog")

	// ErrUnknownModifierType indicates a reference to a modifier type id not in the catalog.
	ErrUnknownModifierType = errors.New("modifier type not in catalog")

	// ErrUnknownOption indicates a reference to an option id not in the catalog.
	ErrUnknownOption = errors.New("modifier option not in catalog")

	// ErrUnknownExpression indicates a reference to an expression id not in the catalog.
	ErrUnknownExpression = errors.New("enable expression not in catalog")

	// ErrUnknownFulfillment indicates a reference to a fulfillment id not in the catalog.
	ErrUnknownFulfillment = errors.New("fulfillment not in catalog")

	// ErrExpressionType indicates an expression evaluated to a type the
	// call site cannot use (e.g. a string where a boolean is required).
	ErrExpressionType = errors.New("expression evaluated to unexpected type")

	// ErrMalformedExpression indicates an expression tree that cannot be evaluated.
	ErrMalformedExpression = errors.New("malformed expression")
)
