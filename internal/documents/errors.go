package documents

import "errors"

// Domain errors for the document engine. Every failure a caller can act on
// maps to one of these sentinels.
var (
	// ErrNotFound indicates the requested document or line was not found.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateNumber indicates a number collision within a document family.
	ErrDuplicateNumber = errors.New("document number already in use")

	// Validation errors.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("unit price must be greater than zero")
	ErrInvalidKind     = errors.New("unknown document kind")

	// Price adjustment errors.
	ErrEmptyDocument = errors.New("document has no line items to scale")
	ErrInvalidTarget = errors.New("target total not reachable with positive prices")

	// Conversion errors.
	ErrNotConvertible = errors.New("document status does not allow conversion")

	// ErrInvalidStatus indicates a status transition or edit the current
	// status does not allow.
	ErrInvalidStatus = errors.New("invalid status transition")
)
