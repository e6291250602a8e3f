package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// SourceEndpoint describes one external engine the gateway calls.
type SourceEndpoint struct {
	BaseURL        string  `yaml:"base_url"`
	Path           string  `yaml:"path"`
	HealthPath     string  `yaml:"health_path"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
	Enabled        *bool   `yaml:"enabled"` // nil means enabled
}

// URL returns the full request URL for the endpoint.
func (e SourceEndpoint) URL() string {
	return strings.TrimRight(e.BaseURL, "/") + e.Path
}

// HealthURL returns the endpoint's health probe URL.
func (e SourceEndpoint) HealthURL() string {
	return strings.TrimRight(e.BaseURL, "/") + e.HealthPath
}

// Timeout returns the per-request timeout.
func (e SourceEndpoint) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// IsEnabled reports whether the endpoint should be called at all.
func (e SourceEndpoint) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// SourcesConfig is the deserialized sources.yaml: one endpoint per data
// source plus the recommendation engine.
type SourcesConfig struct {
	Sources        map[models.SourceKey]SourceEndpoint `yaml:"sources"`
	Recommendation SourceEndpoint                      `yaml:"recommendation"`
}

// DefaultSources returns the built-in registry used when sources.yaml is
// missing. Ports follow the local development layout of the engine
// suite.
func DefaultSources() *SourcesConfig {
	endpoint := func(port int, path string) SourceEndpoint {
		return SourceEndpoint{
			BaseURL:        fmt.Sprintf("http://localhost:%d", port),
			Path:           path,
			HealthPath:     "/health",
			TimeoutSeconds: 30,
			RatePerSecond:  5,
			Burst:          10,
		}
	}
	return &SourcesConfig{
		Sources: map[models.SourceKey]SourceEndpoint{
			models.SourceRateInquiry:    endpoint(8001, "/riq/quote"),
			models.SourceSpotAnalysis:   endpoint(8002, "/spot/analysis"),
			models.SourceHistoricalData: endpoint(8003, "/history/lane"),
			models.SourceOrderRelease:   endpoint(8004, "/orders/unplanned"),
		},
		Recommendation: endpoint(8005, "/recommend"),
	}
}

// LoadSources reads the registry file, fills gaps from the defaults and
// applies environment overrides. A missing file is not an error; the
// defaults carry the day.
func LoadSources(path string) (*SourcesConfig, error) {
	cfg := DefaultSources()

	data, err := os.ReadFile(path)
	if err == nil {
		var fileCfg SourcesConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse sources file: %w", err)
		}
		for key, endpoint := range fileCfg.Sources {
			if !key.Valid() {
				return nil, fmt.Errorf("%w: %q in sources file", models.ErrInvalidSourceKey, key)
			}
			cfg.Sources[key] = withEndpointDefaults(endpoint, cfg.Sources[key])
		}
		if fileCfg.Recommendation.BaseURL != "" {
			cfg.Recommendation = withEndpointDefaults(fileCfg.Recommendation, cfg.Recommendation)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	applySourceOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withEndpointDefaults fills zero fields of a file entry from the
// built-in defaults so partial YAML entries stay usable.
func withEndpointDefaults(e, def SourceEndpoint) SourceEndpoint {
	if e.BaseURL == "" {
		e.BaseURL = def.BaseURL
	}
	if e.Path == "" {
		e.Path = def.Path
	}
	if e.HealthPath == "" {
		e.HealthPath = def.HealthPath
	}
	if e.TimeoutSeconds == 0 {
		e.TimeoutSeconds = def.TimeoutSeconds
	}
	if e.RatePerSecond == 0 {
		e.RatePerSecond = def.RatePerSecond
	}
	if e.Burst == 0 {
		e.Burst = def.Burst
	}
	return e
}

// applySourceOverrides lets single env vars repoint engines without
// touching the registry file, mirroring how the rest of the config
// works.
func applySourceOverrides(cfg *SourcesConfig) {
	overrides := map[models.SourceKey]string{
		models.SourceRateInquiry:    "RIQ_API_URL",
		models.SourceSpotAnalysis:   "SPOT_API_URL",
		models.SourceHistoricalData: "HISTORY_API_URL",
		models.SourceOrderRelease:   "ORDERS_API_URL",
	}
	for key, envKey := range overrides {
		if base := os.Getenv(envKey); base != "" {
			endpoint := cfg.Sources[key]
			endpoint.BaseURL = base
			cfg.Sources[key] = endpoint
		}
	}
	if base := os.Getenv("RECOMMENDATION_API_URL"); base != "" {
		cfg.Recommendation.BaseURL = base
	}
}

// Validate checks that every source key has a well-formed endpoint.
func (c *SourcesConfig) Validate() error {
	for _, key := range models.AllSourceKeys {
		endpoint, ok := c.Sources[key]
		if !ok {
			return fmt.Errorf("sources config missing entry for %s", key)
		}
		if err := validateEndpoint(string(key), endpoint); err != nil {
			return err
		}
	}
	return validateEndpoint("recommendation", c.Recommendation)
}

func validateEndpoint(name string, e SourceEndpoint) error {
	parsed, err := url.Parse(e.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base_url for %s: %q", name, e.BaseURL)
	}
	if e.RatePerSecond <= 0 {
		return fmt.Errorf("rate_per_second for %s must be positive", name)
	}
	return nil
}
