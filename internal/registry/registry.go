// Package registry keeps the explicit repository mappings served under the
// vanity host. Entries are validated and normalised on write and handed out as
// copies on read.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
)

const (
	defaultVCS    = "git"
	defaultBranch = "master"
)

var (
	// ErrInvalidRepository indicates a mapping violates validation rules.
	ErrInvalidRepository = errors.New("invalid repository")
	// ErrDuplicateRepository indicates two mappings share the same name.
	ErrDuplicateRepository = errors.New("duplicate repository name")
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var supportedVCS = map[string]struct{}{
	"git":    {},
	"hg":     {},
	"svn":    {},
	"bzr":    {},
	"fossil": {},
}

// Repository maps a first-level import path segment to a source repository.
type Repository struct {
	Name   string `yaml:"name" json:"name"`
	URL    string `yaml:"url" json:"url"`
	VCS    string `yaml:"vcs,omitempty" json:"vcs"`
	Branch string `yaml:"branch,omitempty" json:"branch"`
}

// Registry provides access to repository mappings.
type Registry interface {
	Lookup(name string) (Repository, bool)
	List() []Repository
	Replace(repos []Repository) error
}

// reservedNames are first path segments owned by the service's own endpoints.
var reservedNames = map[string]struct{}{
	"api":     {},
	"metrics": {},
}

// Reserved reports whether name is taken by the service itself and cannot
// name a repository.
func Reserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// ValidSegment reports whether s may appear as one element of an import path.
func ValidSegment(s string) bool {
	return s != "." && s != ".." && segmentPattern.MatchString(s)
}

// MemoryRegistry keeps mappings in-memory and guards access with a RWMutex.
type MemoryRegistry struct {
	mu    sync.RWMutex
	repos map[string]Repository
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{repos: map[string]Repository{}}
}

// Lookup returns the mapping registered for name.
func (r *MemoryRegistry) Lookup(name string) (Repository, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[name]
	return repo, ok
}

// List returns all mappings sorted by name.
func (r *MemoryRegistry) List() []Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Repository, 0, len(r.repos))
	for _, repo := range r.repos {
		out = append(out, repo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered mappings.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.repos)
}

// Replace validates the whole set and swaps it in atomically. On error the
// previous mappings stay in place.
func (r *MemoryRegistry) Replace(repos []Repository) error {
	next := make(map[string]Repository, len(repos))
	for _, repo := range repos {
		normalized, err := Normalize(repo)
		if err != nil {
			return err
		}
		if _, exists := next[normalized.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateRepository, normalized.Name)
		}
		next[normalized.Name] = normalized
	}

	r.mu.Lock()
	r.repos = next
	r.mu.Unlock()

	return nil
}

// Normalize validates repo and fills in the default VCS and branch.
func Normalize(repo Repository) (Repository, error) {
	repo.Name = strings.Trim(strings.TrimSpace(repo.Name), "/")
	if !ValidSegment(repo.Name) {
		return Repository{}, fmt.Errorf("%w: name %q", ErrInvalidRepository, repo.Name)
	}
	if Reserved(repo.Name) {
		return Repository{}, fmt.Errorf("%w: name %q is reserved", ErrInvalidRepository, repo.Name)
	}

	repoURL, err := NormalizeURL(repo.URL)
	if err != nil {
		return Repository{}, fmt.Errorf("%w: %s: %v", ErrInvalidRepository, repo.Name, err)
	}
	repo.URL = repoURL

	repo.VCS = strings.ToLower(strings.TrimSpace(repo.VCS))
	if repo.VCS == "" {
		repo.VCS = defaultVCS
	}
	if _, ok := supportedVCS[repo.VCS]; !ok {
		return Repository{}, fmt.Errorf("%w: %s: unsupported vcs %q", ErrInvalidRepository, repo.Name, repo.VCS)
	}

	repo.Branch = strings.TrimSpace(repo.Branch)
	if repo.Branch == "" {
		repo.Branch = defaultBranch
	}
	return repo, nil
}

// NormalizeURL turns "github.com/user/repo" or "https://github.com/user/repo/"
// into "https://github.com/user/repo".
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
