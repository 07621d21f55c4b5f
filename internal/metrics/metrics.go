// Package metrics exposes Prometheus instrumentation for the vanity service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page request outcomes.
const (
	OutcomeRendered = "rendered"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Reload results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	pageRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanity_page_requests_total",
		Help: "Vanity page requests by outcome",
	}, []string{"outcome"}) // outcome=rendered|not_found|error

	goGetRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vanity_go_get_requests_total",
		Help: "Vanity page requests issued by the go tool (?go-get=1)",
	})

	registryReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanity_registry_reloads_total",
		Help: "Repository file reloads by result",
	}, []string{"result"})

	registryRepositories = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vanity_registry_repositories",
		Help: "Number of explicitly mapped repositories",
	})

	exportedPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vanity_exported_pages_total",
		Help: "Pages written by static exports",
	})
)

// ObservePageRequest counts one vanity page request.
func ObservePageRequest(outcome string) {
	pageRequests.WithLabelValues(outcome).Inc()
}

// IncGoGetRequests counts a request carrying go-get=1.
func IncGoGetRequests() {
	goGetRequests.Inc()
}

// RecordRegistryReload counts a repository file reload.
func RecordRegistryReload(result string) {
	registryReloads.WithLabelValues(result).Inc()
}

// SetRegistryRepositories publishes the current mapping count.
func SetRegistryRepositories(n int) {
	registryRepositories.Set(float64(n))
}

// AddExportedPages counts pages written by a static export.
func AddExportedPages(n int) {
	exportedPages.Add(float64(n))
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
