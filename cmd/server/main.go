package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"go.philip.id/vanity/internal/application"
	"go.philip.id/vanity/internal/config"
	"go.philip.id/vanity/internal/logging"
	"go.philip.id/vanity/internal/site"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("vanity", "Vanity import path server - serves go-import and go-source meta tags for a custom domain")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	siteURL := kingpinApp.Flag("site", "Canonical site URL or host, e.g. https://go.philip.id").String()
	output := kingpinApp.Flag("output", "Output mode: server or static").Enum(string(site.OutputServer), string(site.OutputStatic))
	adapter := kingpinApp.Flag("adapter", "Hosting adapter").Enum(site.AdapterNames()...)
	githubURL := kingpinApp.Flag("github-url", "Base URL for repositories without an explicit mapping, e.g. github.com/philipid").String()
	repositoriesFile := kingpinApp.Flag("repositories", "Path to YAML file with explicit repository mappings").String()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn, error").String()

	serveCmd := kingpinApp.Command("serve", "Serve vanity pages over HTTP").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	exportCmd := kingpinApp.Command("export", "Pre-render vanity pages for the static output mode")
	outDir := exportCmd.Flag("out", "Directory the pages are written to").String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile:       *configFile,
		Site:             siteURL,
		Output:           output,
		Adapter:          adapter,
		GitHubURL:        githubURL,
		RepositoriesFile: repositoriesFile,
		OutDir:           outDir,
		Port:             port,
		LogLevel:         logLevel,
	}
	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}
	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}
	if command == exportCmd.FullCommand() {
		static := string(site.OutputStatic)
		overrides.Output = &static
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if command == exportCmd.FullCommand() {
		written, err := app.Export(ctx)
		if err != nil {
			logger.Fatal("static export failed", zap.Error(err))
		}
		logger.Info("static export written", zap.String("dir", cfg.OutDir), zap.Strings("files", written))
		return
	}

	if err := app.Start(ctx); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
