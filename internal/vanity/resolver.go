// Package vanity resolves vanity import paths to their source repositories and
// renders the HTML pages the go tool reads.
package vanity

import (
	"fmt"
	"strings"

	"go.philip.id/vanity/internal/registry"
)

const docBaseURL = "https://pkg.go.dev/"

// Page carries everything the page template needs for one import path.
type Page struct {
	// ImportPrefix is the repository root, e.g. "go.philip.id/gokit".
	ImportPrefix string
	// ImportPath is the requested package, e.g. "go.philip.id/gokit/log".
	ImportPath string
	VCS        string
	RepoURL    string
	Branch     string
	DocURL     string
}

// SourceDir is the go-source directory template.
func (p Page) SourceDir() string {
	return p.RepoURL + "/tree/" + p.Branch + "{/dir}"
}

// SourceFile is the go-source file template.
func (p Page) SourceFile() string {
	return p.RepoURL + "/blob/" + p.Branch + "{/dir}/{file}#L{line}"
}

// Resolver maps request paths to pages.
type Resolver struct {
	host     string
	registry registry.Registry
	fallback string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFallback serves unmapped repositories from base + "/" + name.
func WithFallback(base string) ResolverOption {
	return func(r *Resolver) {
		r.fallback = strings.TrimSuffix(base, "/")
	}
}

// NewResolver creates a Resolver for the given import host.
func NewResolver(host string, reg registry.Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		host:     strings.TrimSuffix(host, "/"),
		registry: reg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Host returns the import host prefix.
func (r *Resolver) Host() string {
	return r.host
}

// Resolve turns a request path such as "/gokit/log" into a Page. The first
// segment names the repository; deeper segments are packages inside it.
func (r *Resolver) Resolve(path string) (Page, error) {
	slug := strings.Trim(path, "/")
	if slug == "" {
		return Page{}, ErrEmptyPath
	}

	segments := strings.Split(slug, "/")
	for _, segment := range segments {
		if !registry.ValidSegment(segment) {
			return Page{}, fmt.Errorf("%w: %q", ErrInvalidPath, slug)
		}
	}

	if registry.Reserved(segments[0]) {
		return Page{}, fmt.Errorf("%w: %q is reserved", ErrInvalidPath, segments[0])
	}

	repo, err := r.repository(segments[0])
	if err != nil {
		return Page{}, err
	}

	importPath := r.host + "/" + slug
	return Page{
		ImportPrefix: r.host + "/" + repo.Name,
		ImportPath:   importPath,
		VCS:          repo.VCS,
		RepoURL:      repo.URL,
		Branch:       repo.Branch,
		DocURL:       docBaseURL + importPath,
	}, nil
}

func (r *Resolver) repository(name string) (registry.Repository, error) {
	if r.registry != nil {
		if repo, ok := r.registry.Lookup(name); ok {
			return repo, nil
		}
	}
	if r.fallback == "" {
		return registry.Repository{}, fmt.Errorf("%w: %q", ErrUnknownRepository, name)
	}
	return registry.Normalize(registry.Repository{Name: name, URL: r.fallback + "/" + name})
}
