// Package main provides the entrypoint for the VeloAir API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/internal/airquality"
	"github.com/veloair/veloair/internal/airquality/waqi"
	"github.com/veloair/veloair/internal/api"
	"github.com/veloair/veloair/internal/api/middleware"
	"github.com/veloair/veloair/internal/config"
	"github.com/veloair/veloair/internal/directions/openrouteservice"
	"github.com/veloair/veloair/internal/geocode"
	"github.com/veloair/veloair/internal/geocode/google"
	"github.com/veloair/veloair/internal/provider/resilience"
	"github.com/veloair/veloair/internal/route"
	"github.com/veloair/veloair/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "veloair-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting VeloAir API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Provider registry backs the ops endpoints
	registry := resilience.NewRegistry()

	// Upstream clients
	directionsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   cfg.OpenRouteAPIKey,
		BaseURL:  cfg.OpenRouteBaseURL,
		Registry: registry,
		Logger:   log,
	})
	log.Info().Msg("directions client initialized")

	aqiClient := waqi.NewClient(waqi.ClientConfig{
		Token:    cfg.WAQIToken,
		BaseURL:  cfg.WAQIBaseURL,
		Registry: registry,
	})
	log.Info().Msg("air quality client initialized")

	var geocoder geocode.Provider
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = google.NewClient(google.ClientConfig{
			APIKey:   cfg.GoogleMapsAPIKey,
			BaseURL:  cfg.GoogleMapsBaseURL,
			Registry: registry,
		})
		log.Info().Msg("geocoding client initialized")
	} else {
		log.Warn().Msg("geocoding not configured - route labels will be raw coordinates")
	}

	// Domain services
	aggregator := airquality.NewAggregator(airquality.AggregatorConfig{
		Provider: aqiClient,
		Logger:   log,
	})

	routeService := route.NewService(route.ServiceConfig{
		Gateway:   directionsClient,
		Annotator: aggregator,
		Geocoder:  geocoder,
		Logger:    log,
	})
	log.Info().Msg("route service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		RouteService: routeService,
		Registry:     registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
