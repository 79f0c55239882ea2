package relaxation

import "errors"

var (
	// ErrQuerierRequired indicates a nil Querier was provided.
	ErrQuerierRequired = errors.New("querier is required")

	// ErrInvalidPriority indicates a relaxation order that does not list every field exactly once.
	ErrInvalidPriority = errors.New("invalid relaxation priority")
)
