// Package bootstrap assembles the prediction pipeline from environment
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/classifier/remote"
	"github.com/raildelay/raildelay/internal/classifier/static"
	"github.com/raildelay/raildelay/internal/database"
	"github.com/raildelay/raildelay/internal/provider/resilience"
	"github.com/raildelay/raildelay/internal/refdata"
)

// Reference data sources.
const (
	RefDataBuiltin  = "builtin"
	RefDataFile     = "file"
	RefDataPostgres = "postgres"
)

// Classifier modes.
const (
	ClassifierStatic = "static"
	ClassifierRemote = "remote"
)

// ErrUnknownOption is returned for an unrecognized REFDATA_SOURCE or
// CLASSIFIER_MODE.
var ErrUnknownOption = errors.New("unknown option")

// Config is the pipeline configuration.
type Config struct {
	RefDataSource string
	RefDataFile   string

	ClassifierMode    string
	ClassifierURL     string
	ClassifierAPIKey  string
	ClassifierTimeout time.Duration
	ClassifierRetries uint64
	StaticProbs       []float64
}

// ConfigFromEnv reads REFDATA_SOURCE, REFDATA_FILE, CLASSIFIER_MODE,
// CLASSIFIER_URL, CLASSIFIER_API_KEY, CLASSIFIER_TIMEOUT,
// CLASSIFIER_MAX_RETRIES and CLASSIFIER_STATIC_PROBS.
func ConfigFromEnv() (Config, error) {
	timeout, err := time.ParseDuration(getEnvOrDefault("CLASSIFIER_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("CLASSIFIER_TIMEOUT: %w", err)
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("CLASSIFIER_MAX_RETRIES", "2"), 10, 32)
	if err != nil {
		return Config{}, fmt.Errorf("CLASSIFIER_MAX_RETRIES: %w", err)
	}

	probs, err := parseProbs(getEnvOrDefault("CLASSIFIER_STATIC_PROBS", "0.7,0.2,0.1"))
	if err != nil {
		return Config{}, fmt.Errorf("CLASSIFIER_STATIC_PROBS: %w", err)
	}

	cfg := Config{
		RefDataSource:     getEnvOrDefault("REFDATA_SOURCE", RefDataBuiltin),
		RefDataFile:       os.Getenv("REFDATA_FILE"),
		ClassifierMode:    getEnvOrDefault("CLASSIFIER_MODE", ClassifierStatic),
		ClassifierURL:     os.Getenv("CLASSIFIER_URL"),
		ClassifierAPIKey:  os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierTimeout: timeout,
		ClassifierRetries: retries,
		StaticProbs:       probs,
	}

	if cfg.RefDataSource == RefDataFile && cfg.RefDataFile == "" {
		return Config{}, errors.New("REFDATA_FILE is required when REFDATA_SOURCE=file")
	}
	if cfg.ClassifierMode == ClassifierRemote && cfg.ClassifierURL == "" {
		return Config{}, errors.New("CLASSIFIER_URL is required when CLASSIFIER_MODE=remote")
	}

	return cfg, nil
}

func parseProbs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadReferenceData loads reference data from the configured source.
func LoadReferenceData(ctx context.Context, cfg Config, log zerolog.Logger) (*refdata.Data, error) {
	switch cfg.RefDataSource {
	case RefDataBuiltin:
		return refdata.Default(), nil

	case RefDataFile:
		ref, err := refdata.LoadFile(cfg.RefDataFile)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.RefDataFile).Msg("reference data loaded from file")
		return ref, nil

	case RefDataPostgres:
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return nil, err
		}
		// The data is frozen on load; the pool is not kept.
		defer pool.Close()

		ref, err := refdata.LoadPostgres(ctx, pool)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("reference data loaded from postgres")
		return ref, nil

	default:
		return nil, fmt.Errorf("%w: REFDATA_SOURCE=%q", ErrUnknownOption, cfg.RefDataSource)
	}
}

// NewClassifier builds the configured classifier. A remote classifier's
// HTTP client is registered with registry.
func NewClassifier(cfg Config, registry *resilience.Registry, log zerolog.Logger) (classifier.Classifier, error) {
	switch cfg.ClassifierMode {
	case ClassifierStatic:
		log.Warn().Floats64("probabilities", cfg.StaticProbs).Msg("using static classifier")
		return static.New(cfg.StaticProbs)

	case ClassifierRemote:
		httpCfg := resilience.DefaultClientConfig(remote.ProviderName)
		httpCfg.Timeout = cfg.ClassifierTimeout
		httpCfg.MaxRetries = cfg.ClassifierRetries
		httpCfg.Registry = registry

		return remote.NewClient(remote.ClientConfig{
			BaseURL:    cfg.ClassifierURL,
			APIKey:     cfg.ClassifierAPIKey,
			HTTPClient: resilience.NewClient(httpCfg),
			Logger:     log.With().Str("component", "classifier").Logger(),
		}), nil

	default:
		return nil, fmt.Errorf("%w: CLASSIFIER_MODE=%q", ErrUnknownOption, cfg.ClassifierMode)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
