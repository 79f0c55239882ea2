package vocabulary

import "errors"

// Configuration errors
var (
	// ErrInvalidThreshold indicates a similarity threshold outside 0..1 or a floor above the acceptance threshold.
	ErrInvalidThreshold = errors.New("invalid similarity threshold")

	// ErrSourceRequired indicates a nil Source was provided.
	ErrSourceRequired = errors.New("vocabulary source is required")

	// ErrValidatorRequired indicates a nil Validator was provided.
	ErrValidatorRequired = errors.New("validator is required")
)
