// Package classifier defines the boundary to the pre-trained delay
// classifier and checks that what comes back is a usable probability vector.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/features"
	"github.com/raildelay/raildelay/internal/refdata"
)

// SumTolerance is how far a probability vector's sum may drift from 1.0.
const SumTolerance = 1e-3

// Malformed-output errors. They are wrapped in an *InvocationError.
var (
	ErrWrongArity      = errors.New("wrong number of class probabilities")
	ErrNonFinite       = errors.New("non-finite probability")
	ErrOutOfRange      = errors.New("probability outside [0,1]")
	ErrNotDistribution = errors.New("probabilities do not sum to 1")
)

// Classifier returns per-class delay probabilities for a feature record,
// ordered [on time, slight, major].
type Classifier interface {
	Predict(ctx context.Context, rec features.Record) (estimator.Probabilities, error)
}

// InvocationError reports a failed classifier call or a malformed result.
type InvocationError struct {
	Op  string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("classifier %s: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Validate converts raw classifier output into Probabilities. It never
// renormalizes: anything other than three finite values in [0,1] summing
// to 1 (within SumTolerance) is rejected.
func Validate(raw []float64) (estimator.Probabilities, error) {
	var p estimator.Probabilities

	if len(raw) != refdata.NumClasses {
		return p, &InvocationError{
			Op:  "validate",
			Err: fmt.Errorf("%w: got %d, want %d", ErrWrongArity, len(raw), refdata.NumClasses),
		}
	}

	var sum float64
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return p, &InvocationError{Op: "validate", Err: fmt.Errorf("%w at index %d", ErrNonFinite, i)}
		}
		if v < 0 || v > 1 {
			return p, &InvocationError{Op: "validate", Err: fmt.Errorf("%w: %g at index %d", ErrOutOfRange, v, i)}
		}
		p[i] = v
		sum += v
	}

	if math.Abs(sum-1) > SumTolerance {
		return estimator.Probabilities{}, &InvocationError{
			Op:  "validate",
			Err: fmt.Errorf("%w: sum is %g", ErrNotDistribution, sum),
		}
	}

	return p, nil
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, rec features.Record) (estimator.Probabilities, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, rec features.Record) (estimator.Probabilities, error) {
	return f(ctx, rec)
}
