// Package main provides the entrypoint for the batch prediction worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/bootstrap"
	"github.com/raildelay/raildelay/internal/metrics"
	"github.com/raildelay/raildelay/internal/prediction"
	"github.com/raildelay/raildelay/internal/provider/resilience"
	"github.com/raildelay/raildelay/internal/telemetry"
	"github.com/raildelay/raildelay/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "raildelay-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting rail delay worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID == "" || subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

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

	collector := metrics.NewCollector()
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

	batchConfig := worker.DefaultBatchConfig()
	if n, convErr := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); convErr == nil && n > 0 {
		batchConfig.Concurrency = n
	}
	job := worker.NewBatchJob(worker.BatchJobConfig{
		Config:    batchConfig,
		Predictor: service,
		Logger:    log.With().Str("component", "batch").Logger(),
	})

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		BatchJob:         job,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub client")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "healthy",
			"version": Version,
			"stats":   job.StatsSnapshot(),
		})
	})
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Interface("stats", job.StatsSnapshot()).Msg("worker stopped")
}
