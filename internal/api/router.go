// Package api provides the HTTP API for the rail delay predictor.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/api/handler"
	"github.com/raildelay/raildelay/internal/api/middleware"
	"github.com/raildelay/raildelay/internal/metrics"
	"github.com/raildelay/raildelay/internal/refdata"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// Metrics records OpenTelemetry HTTP metrics (optional).
	Metrics *middleware.Metrics

	// Prometheus serves GET /metrics when set.
	Prometheus *metrics.Collector

	// Providers reports outbound provider health (optional).
	Providers handler.ProviderHealthSource

	Predictor     handler.Predictor
	RefData       *refdata.Data
	RefDataSource string

	// RequireTLS rejects plain-HTTP requests forwarded by a load balancer.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "raildelay-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.RefDataSource, cfg.Providers)
	metadataHandler := handler.NewMetadataHandler(cfg.RefData)
	predictionHandler := handler.NewPredictionHandler(cfg.Predictor)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)         // 100 req/min
	predictionRateLimit := middleware.RateLimitByClient(middleware.PredictionRateLimit) // 60 req/min

	if cfg.Prometheus != nil {
		r.Handle("/metrics", cfg.Prometheus.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/train-types", metadataHandler.ListTrainTypes)
			r.Get("/train-types/{name}/default-number", metadataHandler.GetDefaultTrainNumber)
			r.Get("/stations", metadataHandler.ListStations)
			r.Get("/platforms", metadataHandler.ListPlatforms)
			r.Get("/delay-classes", metadataHandler.ListDelayClasses)
		})

		r.With(middleware.RequireJSON, predictionRateLimit).Post("/predictions", predictionHandler.CreatePrediction)
	})

	return r
}
