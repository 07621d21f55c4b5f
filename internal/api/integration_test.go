package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"go.philip.id/vanity/internal/api"
	"go.philip.id/vanity/internal/registry"
	"go.philip.id/vanity/internal/site"
	"go.philip.id/vanity/internal/vanity"
)

func newRouter(t *testing.T, reg registry.Registry) http.Handler {
	t.Helper()

	cfg, err := site.Define("go.philip.id", site.OutputServer, site.Vercel())
	if err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	resolver := vanity.NewResolver(cfg.Host(), reg, vanity.WithFallback("github.com/philipid"))
	handler := api.NewHandler(cfg, resolver, vanity.NewRenderer(), reg)
	return api.NewRouter(handler, zaptest.NewLogger(t),
		api.WithRequestIDHeader(cfg.Adapter.RequestIDHeader()),
	)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	handler := newRouter(t, reg)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/gokit?go-get=1", map[string]string{"X-Vercel-Id": "cdg1::xyz"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from fallback page, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") != "cdg1::xyz" {
		t.Fatalf("expected platform request id to be echoed, got %q", rec.Header().Get("X-Request-ID"))
	}
	if !strings.Contains(rec.Body.String(), "go.philip.id/gokit git https://github.com/philipid/gokit") {
		t.Fatalf("unexpected fallback page:\n%s", rec.Body.String())
	}

	if err := reg.Replace([]registry.Repository{{Name: "gokit", URL: "codeberg.org/philipid/gokit", Branch: "main"}}); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	rec = performRequest(t, handler, http.MethodGet, "/gokit/log?go-get=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from mapped page, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "go.philip.id/gokit git https://codeberg.org/philipid/gokit") {
		t.Fatalf("expected registry mapping to take effect:\n%s", body)
	}
	if !strings.Contains(body, "https://codeberg.org/philipid/gokit/tree/main{/dir}") {
		t.Fatalf("expected branch from mapping:\n%s", body)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/repositories", nil)
	var listing struct {
		Repositories []registry.Repository `json:"repositories"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listing.Repositories) != 1 || listing.Repositories[0].URL != "https://codeberg.org/philipid/gokit" {
		t.Fatalf("unexpected repositories %+v", listing.Repositories)
	}

	rec = performRequest(t, handler, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), "vanity_page_requests_total") {
		t.Fatalf("expected page request metric in exposition")
	}
}
