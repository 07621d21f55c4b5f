package vanity

import "errors"

var (
	// ErrEmptyPath is returned for requests to the site root.
	ErrEmptyPath = errors.New("empty import path")
	// ErrInvalidPath is returned when a path segment is not a valid import path element.
	ErrInvalidPath = errors.New("invalid import path")
	// ErrUnknownRepository is returned when no mapping exists and fallback is disabled.
	ErrUnknownRepository = errors.New("unknown repository")
)
