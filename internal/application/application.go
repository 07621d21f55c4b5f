package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"go.philip.id/vanity/internal/api"
	"go.philip.id/vanity/internal/config"
	"go.philip.id/vanity/internal/export"
	"go.philip.id/vanity/internal/metrics"
	"go.philip.id/vanity/internal/registry"
	"go.philip.id/vanity/internal/site"
	"go.philip.id/vanity/internal/vanity"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg      config.Config
	registry *registry.MemoryRegistry
	resolver *vanity.Resolver
	exporter *export.Exporter
	watcher  *registry.Watcher
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	reg := registry.NewMemoryRegistry()

	var watcher *registry.Watcher
	if cfg.RepositoriesFile != "" {
		watcher = registry.NewWatcher(cfg.RepositoriesFile, reg, logger)
		if err := watcher.Reload(); err != nil {
			return nil, fmt.Errorf("failed to load repositories: %w", err)
		}
	}

	var resolverOpts []vanity.ResolverOption
	if cfg.GitHubURL != "" {
		resolverOpts = append(resolverOpts, vanity.WithFallback(cfg.GitHubURL))
	}
	resolver := vanity.NewResolver(cfg.Record.Host(), reg, resolverOpts...)
	renderer := vanity.NewRenderer()

	handler := api.NewHandler(cfg.Record, resolver, renderer, reg, api.WithHandlerLogger(logger))
	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithRequestIDHeader(cfg.Record.Adapter.RequestIDHeader()),
	}
	if cfg.Record.Output == site.OutputStatic {
		routerOpts = append(routerOpts, api.WithPages(export.FileHandler(cfg.OutDir)))
	}
	router := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		cfg:      cfg,
		registry: reg,
		resolver: resolver,
		exporter: export.New(resolver, renderer, reg, logger),
		watcher:  watcher,
		router:   router,
		logger:   logger,
		server:   NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Export pre-renders all pages to the configured output directory. It is only
// meaningful for the static output mode.
func (a *App) Export(ctx context.Context) ([]string, error) {
	if a.cfg.Record.Output != site.OutputStatic {
		return nil, fmt.Errorf("export requires output %q, configured %q", site.OutputStatic, a.cfg.Record.Output)
	}
	return a.exporter.Export(ctx, a.cfg.OutDir)
}

// Start prepares static pages when needed, starts the repositories watcher,
// then serves HTTP in a goroutine.
func (a *App) Start(ctx context.Context) error {
	metrics.SetRegistryRepositories(a.registry.Len())

	if a.cfg.Record.Output == site.OutputStatic {
		if _, err := a.Export(ctx); err != nil {
			return fmt.Errorf("static export: %w", err)
		}
	} else if a.watcher != nil && a.cfg.WatchRepositories {
		if err := a.watcher.Start(ctx); err != nil {
			return fmt.Errorf("start repositories watcher: %w", err)
		}
	}

	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("site", a.cfg.Record.Origin()),
			zap.String("output", a.cfg.Record.Output.String()),
			zap.String("adapter", a.cfg.Record.Adapter.Name()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Close releases background resources. The HTTP server is shut down separately.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
