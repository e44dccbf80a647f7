// Package worker scores batches of delay prediction requests received over
// Pub/Sub.
package worker

import (
	"time"

	"github.com/raildelay/raildelay/internal/features"
)

// Job types accepted on the subscription.
const (
	JobTypePredict     = "predict"
	JobTypeHealthCheck = "health_check"
)

// BatchConfig holds configuration for the batch scoring job.
type BatchConfig struct {
	// Concurrency is the number of items scored in parallel.
	// Default: 3
	Concurrency int

	// Timeout bounds each item's prediction.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxItems rejects larger messages outright.
	// Default: 500
	MaxItems int

	// Canary is the trip scored by the health_check job.
	// Default: DefaultCanary
	Canary features.RawInput
}

// DefaultBatchConfig returns the default batch configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
		MaxItems:    500,
		Canary:      DefaultCanary(),
	}
}

// DefaultCanary is a morning Intercity at Utrecht Centraal, a trip the
// built-in reference data always accepts.
func DefaultCanary() features.RawInput {
	return features.RawInput{
		TrainType:   "Intercity",
		TrainNumber: 1410,
		StationCode: "UT",
		Platform:    "5",
		ArrivalDate: features.Date{Year: 2024, Month: time.March, Day: 15},
		ArrivalTime: features.Clock{Hour: 8},
	}
}

func (c BatchConfig) withDefaults() BatchConfig {
	d := DefaultBatchConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxItems <= 0 {
		c.MaxItems = d.MaxItems
	}
	if c.Canary.TrainType == "" {
		c.Canary = d.Canary
	}
	return c
}
