// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. The merged result carries the validated
// site record so the rest of the application never sees raw strings for the
// site, output mode or adapter.
package config
