package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePageRequest(t *testing.T) {
	before := testutil.ToFloat64(pageRequests.WithLabelValues(OutcomeNotFound))
	ObservePageRequest(OutcomeNotFound)
	after := testutil.ToFloat64(pageRequests.WithLabelValues(OutcomeNotFound))

	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestSetRegistryRepositories(t *testing.T) {
	SetRegistryRepositories(7)
	if got := testutil.ToFloat64(registryRepositories); got != 7 {
		t.Fatalf("expected gauge 7, got %v", got)
	}
}

func TestHandlerExposesVanityMetrics(t *testing.T) {
	IncGoGetRequests()
	RecordRegistryReload(ResultSuccess)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"vanity_go_get_requests_total", "vanity_registry_reloads_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in exposition", name)
		}
	}
}
