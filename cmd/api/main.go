// Package main provides the entrypoint for the rail delay API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/api"
	"github.com/raildelay/raildelay/internal/api/middleware"
	"github.com/raildelay/raildelay/internal/bootstrap"
	"github.com/raildelay/raildelay/internal/metrics"
	"github.com/raildelay/raildelay/internal/prediction"
	"github.com/raildelay/raildelay/internal/provider/resilience"
	"github.com/raildelay/raildelay/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "raildelay-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting rail delay API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	requireTLS, _ := strconv.ParseBool(os.Getenv("REQUIRE_TLS"))

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryConfig := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryConfig)
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

	if telemetryConfig.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryConfig.OTLPEndpoint).
			Float64("sample_ratio", telemetryConfig.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	collector := metrics.NewCollector()

	cfg, err := bootstrap.ConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ref, err := bootstrap.LoadReferenceData(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.RefDataSource).Msg("failed to load reference data")
	}

	registry := resilience.NewRegistry()
	clf, err := bootstrap.NewClassifier(cfg, registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create classifier")
	}

	service, err := prediction.NewService(prediction.ServiceConfig{
		RefData:    ref,
		Classifier: clf,
		Metrics:    collector,
		Tracer:     tp.Tracer,
		Logger:     log.With().Str("component", "prediction").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create prediction service")
	}
	log.Info().
		Str("refdata_source", cfg.RefDataSource).
		Str("classifier_mode", cfg.ClassifierMode).
		Int("train_types", len(ref.TrainTypes())).
		Int("stations", len(ref.Stations())).
		Msg("prediction service initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       httpMetrics,
		Prometheus:    collector,
		Providers:     registry,
		Predictor:     service,
		RefData:       ref,
		RefDataSource: cfg.RefDataSource,
		RequireTLS:    requireTLS,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
