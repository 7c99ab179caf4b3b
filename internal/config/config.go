// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the VeloAir API.
type Config struct {
	// Port is the HTTP listen port.
	Port string `env:"APP_PORT" envDefault:"8080"`

	// Environment is the deployment environment name.
	Environment string `env:"APP_ENV" envDefault:"development"`

	// OpenRouteAPIKey authenticates against the OpenRouteService API.
	OpenRouteAPIKey string `env:"OPENROUTE_API_KEY"`

	// OpenRouteBaseURL overrides the OpenRouteService endpoint,
	// mainly for self-hosted instances and tests.
	OpenRouteBaseURL string `env:"OPENROUTE_BASE_URL"`

	// WAQIToken authenticates against the World Air Quality Index API.
	WAQIToken string `env:"WAQI_API_KEY"`

	// WAQIBaseURL overrides the WAQI endpoint.
	WAQIBaseURL string `env:"WAQI_BASE_URL"`

	// GoogleMapsAPIKey enables reverse geocoding of route endpoints.
	// Optional; raw coordinates are used as labels when unset.
	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	// GoogleMapsBaseURL overrides the Google Maps endpoint.
	GoogleMapsBaseURL string `env:"GOOGLE_MAPS_BASE_URL"`

	// OTELEnabled turns on OpenTelemetry export.
	OTELEnabled bool `env:"OTEL_ENABLED" envDefault:"false"`

	// OTLPEndpoint is the OTLP gRPC collector address.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables take precedence over the file.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.OpenRouteAPIKey == "" {
		return fmt.Errorf("OPENROUTE_API_KEY is required")
	}
	if c.WAQIToken == "" {
		return fmt.Errorf("WAQI_API_KEY is required")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
