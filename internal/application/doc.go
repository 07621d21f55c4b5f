// Package application provides application initialization and dependency wiring.
// It builds the repository registry, resolver, renderer, exporter, routers and
// HTTP server from a loaded configuration, keeping the main package focused on
// CLI parsing and orchestration.
package application
