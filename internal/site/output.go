package site

import (
	"fmt"
	"strings"
)

// Output selects how pages are produced.
type Output string

const (
	// OutputServer renders every page per request.
	OutputServer Output = "server"
	// OutputStatic pre-renders pages to files at build time.
	OutputStatic Output = "static"
)

// ParseOutput converts a configuration value into an Output.
func ParseOutput(raw string) (Output, error) {
	switch Output(strings.ToLower(strings.TrimSpace(raw))) {
	case OutputServer:
		return OutputServer, nil
	case OutputStatic:
		return OutputStatic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutput, raw)
}

func (o Output) String() string {
	return string(o)
}

// Valid reports whether o is a known output mode.
func (o Output) Valid() bool {
	return o == OutputServer || o == OutputStatic
}
