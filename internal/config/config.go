// Package config loads and validates client configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the public API endpoint.
const DefaultAPIBaseURL = "https://api.planetscale.com/v1"

// Config is the root client configuration.
type Config struct {
	API           APIConfig           `yaml:"api"`
	HTTP          HTTPConfig          `yaml:"http"`
	Pagination    PaginationConfig    `yaml:"pagination"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// APIConfig describes the remote API and the credential used against it.
type APIConfig struct {
	BaseURL      string `yaml:"base_url"`
	Organization string `yaml:"organization"`
	Token        string `yaml:"token"`
	UserAgent    string `yaml:"user_agent"`
}

// HTTPConfig describes the default transport.
type HTTPConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	MaxResponseBytes    int64         `yaml:"max_response_bytes"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout"`
}

// PaginationConfig bounds pagination streams.
type PaginationConfig struct {
	MaxPages int `yaml:"max_pages"`
	PerPage  int `yaml:"per_page"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			UserAgent: "pscale-go",
		},
		HTTP: HTTPConfig{
			Timeout:             30 * time.Second,
			MaxResponseBytes:    10 << 20,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Pagination: PaginationConfig{
			MaxPages: 10000,
			PerPage:  25,
		},
		Observability: ObservabilityConfig{
			LogLevel: "warn",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefaults loads path when it is non-empty; otherwise it starts from
// Defaults and applies environment overrides only.
func LoadOrDefaults(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := Defaults()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.base_url must be an absolute URL")
	}
	if c.API.Token == "" {
		errs = append(errs, "api.token is required")
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, "http.timeout must not be negative")
	}
	if c.HTTP.MaxResponseBytes <= 0 {
		errs = append(errs, "http.max_response_bytes must be positive")
	}
	if c.Pagination.MaxPages < 1 {
		errs = append(errs, "pagination.max_pages must be at least 1")
	}
	if c.Pagination.PerPage < 0 || c.Pagination.PerPage > 100 {
		errs = append(errs, "pagination.per_page must be between 0 and 100")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads PSCALE_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PSCALE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PSCALE_ORG"); v != "" {
		cfg.API.Organization = v
	}
	if v := os.Getenv("PSCALE_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("PSCALE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("PSCALE_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pagination.MaxPages = n
		}
	}
}
