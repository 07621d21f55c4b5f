package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"go.philip.id/vanity/internal/metrics"
	"go.philip.id/vanity/internal/registry"
	"go.philip.id/vanity/internal/site"
	"go.philip.id/vanity/internal/vanity"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the resolver, renderer and registry into HTTP handlers.
type Handler struct {
	site     site.Config
	resolver *vanity.Resolver
	renderer *vanity.Renderer
	registry registry.Registry
	logger   *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger sets the logger used for render failures.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(cfg site.Config, resolver *vanity.Resolver, renderer *vanity.Renderer, reg registry.Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		site:     cfg,
		resolver: resolver,
		renderer: renderer,
		registry: reg,
		logger:   zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSite(w http.ResponseWriter, _ *http.Request) {
	resp := siteResponse{
		Site:   h.site.Origin(),
		Host:   h.site.Host(),
		Output: h.site.Output.String(),
	}
	if h.site.Adapter != nil {
		resp.Adapter = h.site.Adapter.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRepositories(w http.ResponseWriter, _ *http.Request) {
	repos := []registry.Repository{}
	if h.registry != nil {
		repos = h.registry.List()
	}
	writeJSON(w, http.StatusOK, repositoriesResponse{Repositories: repos})
}

// handlePage answers both browsers and the go tool. The meta tags are always
// present, so go-get=1 only affects metrics.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("go-get") == "1" {
		metrics.IncGoGetRequests()
	}

	page, err := h.resolver.Resolve(r.URL.Path)
	if err != nil {
		switch {
		case errors.Is(err, vanity.ErrEmptyPath),
			errors.Is(err, vanity.ErrInvalidPath),
			errors.Is(err, vanity.ErrUnknownRepository):
			metrics.ObservePageRequest(metrics.OutcomeNotFound)
			http.NotFound(w, r)
		default:
			metrics.ObservePageRequest(metrics.OutcomeError)
			writeInternalError(w, err)
		}
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		metrics.ObservePageRequest(metrics.OutcomeError)
		h.logger.Error("render failed",
			zap.String("import_path", page.ImportPath),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Template error", "unable to render page")
		return
	}

	metrics.ObservePageRequest(metrics.OutcomeRendered)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", "no API endpoint at "+r.URL.Path)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type siteResponse struct {
	Site    string `json:"site"`
	Host    string `json:"host"`
	Output  string `json:"output"`
	Adapter string `json:"adapter"`
}

type repositoriesResponse struct {
	Repositories []registry.Repository `json:"repositories"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
