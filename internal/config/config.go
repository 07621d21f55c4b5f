package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go.philip.id/vanity/internal/registry"
	"go.philip.id/vanity/internal/site"
)

const (
	defaultSite           = "https://go.philip.id"
	defaultOutput         = "server"
	defaultAdapter        = "deno"
	defaultOutDir         = "dist"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// ErrNoRepositorySource is returned when neither a fallback repository base
// nor a repositories file is configured.
var ErrNoRepositorySource = errors.New("either github_url or repositories_file must be set")

// ErrStaticWithoutRepositories is returned for the static output mode without a
// repositories file: fallback repositories are only known per request, so
// there would be nothing to pre-render.
var ErrStaticWithoutRepositories = errors.New("output static requires repositories_file")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Site                 string
	Output               string
	Adapter              string
	GitHubURL            string
	RepositoriesFile     string
	WatchRepositories    bool
	OutDir               string
	Port                 string
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int

	// Record is the validated site record built from Site, Output and Adapter.
	Record site.Config
}

// yamlConfig represents the YAML configuration file structure. Pointers
// distinguish "absent" from zero values.
type yamlConfig struct {
	Site                 string        `yaml:"site"`
	Output               string        `yaml:"output"`
	Adapter              string        `yaml:"adapter"`
	GitHubURL            string        `yaml:"github_url"`
	RepositoriesFile     string        `yaml:"repositories_file"`
	WatchRepositories    *bool         `yaml:"watch_repositories"`
	OutDir               string        `yaml:"out_dir"`
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	Site             *string
	Output           *string
	Adapter          *string
	GitHubURL        *string
	RepositoriesFile *string
	OutDir           *string
	Port             *string
	LogLevel         *string
	RateLimitRPS     *float64
	RateLimitBurst   *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so YAML and flags can override it.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := finalize(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Site:                 defaultSite,
		Output:               defaultOutput,
		Adapter:              defaultAdapter,
		WatchRepositories:    true,
		OutDir:               defaultOutDir,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.Site, yamlCfg.Site)
	setString(&cfg.Output, yamlCfg.Output)
	setString(&cfg.Adapter, yamlCfg.Adapter)
	setString(&cfg.GitHubURL, yamlCfg.GitHubURL)
	setString(&cfg.RepositoriesFile, yamlCfg.RepositoriesFile)
	setString(&cfg.OutDir, yamlCfg.OutDir)
	setString(&cfg.Port, yamlCfg.Port)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = value
	}

	if yamlCfg.WatchRepositories != nil {
		cfg.WatchRepositories = *yamlCfg.WatchRepositories
	}
	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration. BASE_URL and
// GITHUB_URL keep the names the service has always been deployed with.
func applyEnvConfig(cfg *Config) {
	setString(&cfg.Site, os.Getenv("BASE_URL"))
	setString(&cfg.Output, os.Getenv("OUTPUT"))
	setString(&cfg.Adapter, os.Getenv("ADAPTER"))
	setString(&cfg.GitHubURL, os.Getenv("GITHUB_URL"))
	setString(&cfg.RepositoriesFile, os.Getenv("REPOSITORIES_FILE"))
	setString(&cfg.Port, os.Getenv("PORT"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	setStringPtr(&cfg.Site, overrides.Site)
	setStringPtr(&cfg.Output, overrides.Output)
	setStringPtr(&cfg.Adapter, overrides.Adapter)
	setStringPtr(&cfg.GitHubURL, overrides.GitHubURL)
	setStringPtr(&cfg.RepositoriesFile, overrides.RepositoriesFile)
	setStringPtr(&cfg.OutDir, overrides.OutDir)
	setStringPtr(&cfg.Port, overrides.Port)
	setStringPtr(&cfg.LogLevel, overrides.LogLevel)

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// finalize validates the merged configuration, builds the site record and
// fills in values derived from it.
func finalize(cfg *Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}

	output, err := site.ParseOutput(cfg.Output)
	if err != nil {
		return err
	}
	adapter, err := site.AdapterByName(cfg.Adapter)
	if err != nil {
		return err
	}
	record, err := site.Define(cfg.Site, output, adapter)
	if err != nil {
		return err
	}
	cfg.Record = record
	cfg.Output = output.String()
	cfg.Adapter = adapter.Name()

	if cfg.GitHubURL == "" && cfg.RepositoriesFile == "" {
		return ErrNoRepositorySource
	}
	if output == site.OutputStatic && cfg.RepositoriesFile == "" {
		return ErrStaticWithoutRepositories
	}
	if cfg.GitHubURL != "" {
		normalized, err := registry.NormalizeURL(cfg.GitHubURL)
		if err != nil {
			return fmt.Errorf("github_url: %w", err)
		}
		cfg.GitHubURL = normalized
	}

	if cfg.Port == "" {
		cfg.Port = adapter.DefaultPort()
	}
	return nil
}

// Addr returns the listen address derived from Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setStringPtr(dst *string, value *string) {
	if value != nil {
		setString(dst, *value)
	}
}
