// Package estimator converts the classifier's per-class probabilities into
// an expected delay in minutes and a delay category derived from it.
package estimator

import (
	"math"

	"github.com/raildelay/raildelay/internal/refdata"
)

// Category thresholds on the expected delay, in minutes. Both are inclusive
// upper bounds.
const (
	OnTimeMaxMinutes = 2.0
	SlightMaxMinutes = 5.0
)

// Probabilities is a probability vector indexed by refdata.DelayClass.
type Probabilities [refdata.NumClasses]float64

// Result is the outcome of a single estimate.
type Result struct {
	// ExpectedDelayMinutes is the probability-weighted delay, full precision.
	ExpectedDelayMinutes float64

	// Class is derived from ExpectedDelayMinutes, not from the largest
	// probability.
	Class refdata.DelayClass

	// Probabilities is the (clamped) input vector, full precision.
	Probabilities Probabilities
}

// ClassProbability is one row of a probability breakdown.
type ClassProbability struct {
	Class       refdata.DelayClass
	Label       string
	Probability float64
}

// Estimate blends the representative minutes of each class by its
// probability and derives the category from the blended value.
//
// Components outside [0,1] (or NaN) are clamped. The classifier boundary
// rejects such vectors, so a clamp here means that check was bypassed.
func Estimate(p Probabilities) Result {
	var (
		clamped  Probabilities
		expected float64
	)
	for _, c := range refdata.Classes {
		clamped[c] = clamp01(p[c])
		expected += clamped[c] * c.RepresentativeMinutes()
	}

	return Result{
		ExpectedDelayMinutes: expected,
		Class:                ClassifyDelay(expected),
		Probabilities:        clamped,
	}
}

// ClassifyDelay maps an expected delay onto a category:
// ≤2.0 on time, ≤5.0 slight, otherwise major.
func ClassifyDelay(minutes float64) refdata.DelayClass {
	switch {
	case minutes <= OnTimeMaxMinutes:
		return refdata.OnTime
	case minutes <= SlightMaxMinutes:
		return refdata.Slight
	default:
		return refdata.Major
	}
}

// MostLikely returns the class with the highest probability. Ties go to
// the lower class. It is informational only and never decides Result.Class.
func MostLikely(p Probabilities) refdata.DelayClass {
	best := refdata.OnTime
	for _, c := range refdata.Classes[1:] {
		if p[c] > p[best] {
			best = c
		}
	}
	return best
}

// DisplayDelay returns the expected delay rounded to 2 decimals.
func (r Result) DisplayDelay() float64 {
	return roundTo(r.ExpectedDelayMinutes, 2)
}

// DisplayProbabilities returns the probabilities rounded to 3 decimals.
func (r Result) DisplayProbabilities() Probabilities {
	var out Probabilities
	for i, v := range r.Probabilities {
		out[i] = roundTo(v, 3)
	}
	return out
}

// Breakdown returns one display row per class, in class order.
func (r Result) Breakdown() []ClassProbability {
	display := r.DisplayProbabilities()
	rows := make([]ClassProbability, 0, refdata.NumClasses)
	for _, c := range refdata.Classes {
		rows = append(rows, ClassProbability{
			Class:       c,
			Label:       c.Label(),
			Probability: display[c],
		})
	}
	return rows
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
