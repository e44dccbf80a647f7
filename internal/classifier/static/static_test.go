package static_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/classifier/static"
	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/features"
)

func TestClassifier_Predict(t *testing.T) {
	c, err := static.New([]float64{0.7, 0.2, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "static", c.Name())

	p, err := c.Predict(context.Background(), features.Record{})
	require.NoError(t, err)
	assert.Equal(t, estimator.Probabilities{0.7, 0.2, 0.1}, p)
}

func TestNew_RejectsMalformedVector(t *testing.T) {
	_, err := static.New([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, classifier.ErrWrongArity)
}

func TestClassifier_CanceledContext(t *testing.T) {
	c, err := static.New([]float64{1, 0, 0})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Predict(ctx, features.Record{})
	assert.ErrorIs(t, err, context.Canceled)
}
