package types

import "github.com/google/uuid"

// NewProductID generates a UUIDv7 product identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewProductID() ProductID {
	return ProductID(uuid.Must(uuid.NewV7()).String())
}

// NewProductInstanceID generates a UUIDv7 product instance identifier.
func NewProductInstanceID() ProductInstanceID {
	return ProductInstanceID(uuid.Must(uuid.NewV7()).String())
}

// NewModifierTypeID generates a UUIDv7 modifier type identifier.
func NewModifierTypeID() ModifierTypeID {
	return ModifierTypeID(uuid.Must(uuid.NewV7()).String())
}

// NewOptionID generates a UUIDv7 modifier option identifier.
func NewOptionID() OptionID {
	return OptionID(uuid.Must(uuid.NewV7()).String())
}
