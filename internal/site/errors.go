package site

import "errors"

var (
	// ErrInvalidSite is returned when the site URL is missing, relative or has no host.
	ErrInvalidSite = errors.New("site must be an absolute URL with a host")
	// ErrInvalidOutput is returned for unknown output modes.
	ErrInvalidOutput = errors.New("output must be one of server, static")
	// ErrUnknownAdapter is returned when an adapter name does not match a built-in adapter.
	ErrUnknownAdapter = errors.New("unknown adapter")
	// ErrMissingAdapter is returned when no adapter was selected.
	ErrMissingAdapter = errors.New("adapter is required")
)
