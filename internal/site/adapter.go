package site

import (
	"fmt"
	"sort"
	"strings"
)

// Adapter describes how the service is packaged for a hosting runtime.
type Adapter interface {
	Name() string
	// DefaultPort is used when no port is configured explicitly.
	DefaultPort() string
	// RequestIDHeader names the header the platform uses to tag requests.
	RequestIDHeader() string
}

type adapter struct {
	name            string
	defaultPort     string
	requestIDHeader string
}

func (a adapter) Name() string            { return a.name }
func (a adapter) DefaultPort() string     { return a.defaultPort }
func (a adapter) RequestIDHeader() string { return a.requestIDHeader }

func (a adapter) String() string { return a.name }

// Deno targets the Deno Deploy runtime.
func Deno() Adapter {
	return adapter{name: "deno", defaultPort: "8000", requestIDHeader: "X-Request-ID"}
}

// Vercel targets Vercel serverless functions.
func Vercel() Adapter {
	return adapter{name: "vercel", defaultPort: "3000", requestIDHeader: "X-Vercel-Id"}
}

// Standalone runs the service as a plain HTTP server.
func Standalone() Adapter {
	return adapter{name: "standalone", defaultPort: "1337", requestIDHeader: "X-Request-ID"}
}

var adapters = map[string]func() Adapter{
	"deno":       Deno,
	"vercel":     Vercel,
	"standalone": Standalone,
}

// AdapterByName resolves one of the built-in adapters.
func AdapterByName(name string) (Adapter, error) {
	factory, ok := adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAdapter, name, strings.Join(AdapterNames(), ", "))
	}
	return factory(), nil
}

// AdapterNames lists the built-in adapter names in sorted order.
func AdapterNames() []string {
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
