package ranking

import "errors"

// ErrInvalidWeight indicates a negative weight or a weight for an unknown field.
var ErrInvalidWeight = errors.New("invalid field weight")
