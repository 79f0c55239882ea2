package upstream

import "errors"

var (
	// ErrBaseURLRequired is returned when the client is created without a base URL.
	ErrBaseURLRequired = errors.New("upstream base URL required")

	// ErrNotFound is returned when the upstream service answers 404.
	ErrNotFound = errors.New("upstream resource not found")

	// ErrUnexpectedStatus is returned for 4xx answers other than 404.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")

	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid upstream client option")
)
