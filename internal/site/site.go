// Package site holds the deployment record of the vanity site: its canonical
// origin, the output mode and the hosting adapter.
package site

import (
	"fmt"
	"net/url"
	"strings"
)

// Config is the validated site record. It is built once at start-up and
// read-only afterwards.
type Config struct {
	Site    *url.URL
	Output  Output
	Adapter Adapter
}

// Define parses the site URL and validates the record.
func Define(rawSite string, output Output, adapter Adapter) (Config, error) {
	u, err := ParseSite(rawSite)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Site: u, Output: output, Adapter: adapter}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseSite accepts either a full origin or a bare host such as
// "go.philip.id", in which case https is assumed.
func ParseSite(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSite)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSite, err)
	}
	if u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSite, raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Validate checks that every field of the record is set and known.
func (c Config) Validate() error {
	if c.Site == nil || c.Site.Host == "" || !c.Site.IsAbs() {
		return ErrInvalidSite
	}
	if !c.Output.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output)
	}
	if c.Adapter == nil {
		return ErrMissingAdapter
	}
	return nil
}

// Host is the import path prefix served by the site, e.g. "go.philip.id".
func (c Config) Host() string {
	if c.Site == nil {
		return ""
	}
	return c.Site.Host + strings.TrimSuffix(c.Site.Path, "/")
}

// Origin returns the canonical site URL without a trailing slash.
func (c Config) Origin() string {
	if c.Site == nil {
		return ""
	}
	return strings.TrimSuffix(c.Site.String(), "/")
}
