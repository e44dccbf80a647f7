// Package static provides a classifier that always answers with the same
// probability vector, for local development and tests.
package static

import (
	"context"

	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/features"
)

// ProviderName identifies this classifier.
const ProviderName = "static"

// Classifier returns a fixed probability vector.
type Classifier struct {
	probs estimator.Probabilities
}

// New creates a static classifier. The vector is validated once up front.
func New(raw []float64) (*Classifier, error) {
	p, err := classifier.Validate(raw)
	if err != nil {
		return nil, err
	}
	return &Classifier{probs: p}, nil
}

// Name returns the provider name.
func (c *Classifier) Name() string {
	return ProviderName
}

// Predict returns the configured vector, or the context error if ctx is done.
func (c *Classifier) Predict(ctx context.Context, _ features.Record) (estimator.Probabilities, error) {
	if err := ctx.Err(); err != nil {
		return estimator.Probabilities{}, &classifier.InvocationError{Op: "predict", Err: err}
	}
	return c.probs, nil
}
