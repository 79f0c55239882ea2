package refresh

import "errors"

var (
	// ErrPagerRequired is returned when no catalog source is provided.
	ErrPagerRequired = errors.New("catalog pager required")

	// ErrIngesterRequired is returned when no ingester is provided.
	ErrIngesterRequired = errors.New("ingester required")
)
