package estimator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/refdata"
)

func TestEstimate_ExpectedDelay(t *testing.T) {
	tests := []struct {
		name     string
		probs    estimator.Probabilities
		expected float64
		display  float64
		class    refdata.DelayClass
	}{
		{"certainly on time", estimator.Probabilities{1, 0, 0}, 1.0, 1.00, refdata.OnTime},
		{"certainly slight", estimator.Probabilities{0, 1, 0}, 3.5, 3.50, refdata.Slight},
		{"certainly major", estimator.Probabilities{0, 0, 1}, 8.0, 8.00, refdata.Major},
		{"mixed", estimator.Probabilities{0.5, 0.3, 0.2}, 3.15, 3.15, refdata.Slight},
		{"major dominant", estimator.Probabilities{0.1, 0.1, 0.8}, 6.85, 6.85, refdata.Major},
		{"intercity scenario", estimator.Probabilities{0.7, 0.2, 0.1}, 2.2, 2.20, refdata.Slight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := estimator.Estimate(tt.probs)
			assert.InDelta(t, tt.expected, res.ExpectedDelayMinutes, 1e-9)
			assert.Equal(t, tt.display, res.DisplayDelay())
			assert.Equal(t, tt.class, res.Class)
		})
	}
}

func TestClassifyDelay_Boundaries(t *testing.T) {
	tests := []struct {
		minutes  float64
		expected refdata.DelayClass
	}{
		{0, refdata.OnTime},
		{1.0, refdata.OnTime},
		{2.0, refdata.OnTime},
		{2.0000001, refdata.Slight},
		{3.5, refdata.Slight},
		{5.0, refdata.Slight},
		{5.0000001, refdata.Major},
		{8.0, refdata.Major},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, estimator.ClassifyDelay(tt.minutes), "minutes=%v", tt.minutes)
	}
}

func TestEstimate_IndependentOfArgMax(t *testing.T) {
	tests := []struct {
		name    string
		probs   estimator.Probabilities
		argMax  refdata.DelayClass
		derived refdata.DelayClass
	}{
		// 0.3 + 0.875 + 3.6 = 4.775
		{"major most likely but blend is slight", estimator.Probabilities{0.3, 0.25, 0.45}, refdata.Major, refdata.Slight},
		// 0.55 + 0 + 3.6 = 4.15
		{"on time most likely but blend is slight", estimator.Probabilities{0.55, 0, 0.45}, refdata.OnTime, refdata.Slight},
		// 0.4 + 0 + 4.8 = 5.2
		{"bimodal blend is major", estimator.Probabilities{0.4, 0, 0.6}, refdata.Major, refdata.Major},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.argMax, estimator.MostLikely(tt.probs))

			res := estimator.Estimate(tt.probs)
			assert.Equal(t, tt.derived, res.Class)
			assert.Equal(t, estimator.ClassifyDelay(res.ExpectedDelayMinutes), res.Class)
		})
	}
}

func TestEstimate_ClassAlwaysMatchesThresholds(t *testing.T) {
	const steps = 20
	for i := 0; i <= steps; i++ {
		for j := 0; i+j <= steps; j++ {
			p := estimator.Probabilities{
				float64(i) / steps,
				float64(j) / steps,
				float64(steps-i-j) / steps,
			}
			res := estimator.Estimate(p)

			assert.GreaterOrEqual(t, res.ExpectedDelayMinutes, 0.0)
			assert.Equal(t, estimator.ClassifyDelay(res.ExpectedDelayMinutes), res.Class, "p=%v", p)
		}
	}
}

func TestEstimate_ClampsOutOfRange(t *testing.T) {
	res := estimator.Estimate(estimator.Probabilities{-0.2, 1.4, math.NaN()})

	assert.Equal(t, estimator.Probabilities{0, 1, 0}, res.Probabilities)
	assert.InDelta(t, 3.5, res.ExpectedDelayMinutes, 1e-12)
	assert.Equal(t, refdata.Slight, res.Class)
}

func TestEstimate_Idempotent(t *testing.T) {
	p := estimator.Probabilities{0.123456, 0.654321, 0.222223}
	assert.Equal(t, estimator.Estimate(p), estimator.Estimate(p))
}

func TestResult_Display(t *testing.T) {
	res := estimator.Estimate(estimator.Probabilities{0.12345, 0.54321, 0.33334})

	assert.Equal(t, estimator.Probabilities{0.123, 0.543, 0.333}, res.DisplayProbabilities())
	assert.Equal(t, 0.12345, res.Probabilities[0], "full precision retained")

	// 0.12345 + 1.901235 + 2.66672 = 4.691405
	assert.Equal(t, 4.69, res.DisplayDelay())
}

func TestResult_Breakdown(t *testing.T) {
	res := estimator.Estimate(estimator.Probabilities{0.7, 0.2, 0.1})
	rows := res.Breakdown()

	assert.Equal(t, []estimator.ClassProbability{
		{Class: refdata.OnTime, Label: "On-time (0–2 min)", Probability: 0.7},
		{Class: refdata.Slight, Label: "Slight delay (2–5 min)", Probability: 0.2},
		{Class: refdata.Major, Label: "Major delay (5+ min)", Probability: 0.1},
	}, rows)
}

func TestMostLikely_TieGoesToLowerClass(t *testing.T) {
	assert.Equal(t, refdata.OnTime, estimator.MostLikely(estimator.Probabilities{0.4, 0.2, 0.4}))
	assert.Equal(t, refdata.Slight, estimator.MostLikely(estimator.Probabilities{0.2, 0.4, 0.4}))
}
