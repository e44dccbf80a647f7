// Package prediction runs a trip selection through feature building, the
// delay classifier and the delay estimator.
package prediction

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/features"
	"github.com/raildelay/raildelay/internal/metrics"
	"github.com/raildelay/raildelay/internal/provider/resilience"
	"github.com/raildelay/raildelay/internal/refdata"
)

const tracerName = "github.com/raildelay/raildelay/internal/prediction"

// Configuration errors.
var (
	ErrNoReferenceData = errors.New("reference data is required")
	ErrNoClassifier    = errors.New("classifier is required")
)

// ServiceConfig holds configuration for the prediction service.
type ServiceConfig struct {
	// RefData is the reference data used to build features (required).
	RefData *refdata.Data

	// Classifier produces class probabilities (required).
	Classifier classifier.Classifier

	// Metrics records prediction outcomes (optional).
	Metrics *metrics.Collector

	// Tracer for pipeline spans. Defaults to the global tracer provider.
	Tracer trace.Tracer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Prediction is the outcome of one pipeline run.
type Prediction struct {
	Input    features.RawInput
	Features features.Record
	Result   estimator.Result

	// MostLikely is the arg-max class, for display next to Result.Class.
	MostLikely refdata.DelayClass
}

// Service predicts train delays. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	ref        *refdata.Data
	classifier classifier.Classifier
	metrics    *metrics.Collector
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewService creates a new prediction service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.RefData == nil {
		return nil, ErrNoReferenceData
	}
	if cfg.Classifier == nil {
		return nil, ErrNoClassifier
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Service{
		ref:        cfg.RefData,
		classifier: cfg.Classifier,
		metrics:    cfg.Metrics,
		tracer:     tracer,
		logger:     cfg.Logger,
	}, nil
}

// ReferenceData returns the reference data backing the service.
func (s *Service) ReferenceData() *refdata.Data {
	return s.ref
}

// DefaultTrainNumber returns the train number to preselect for trainType.
func (s *Service) DefaultTrainNumber(trainType string) (int, error) {
	return s.ref.DefaultTrainNumber(trainType)
}

// Predict builds the feature record for in, asks the classifier for class
// probabilities and turns them into an expected delay.
//
// Errors are returned unchanged: *features.ValidationError for bad input,
// *classifier.InvocationError for classifier failures.
func (s *Service) Predict(ctx context.Context, in features.RawInput) (*Prediction, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.Predict",
		trace.WithAttributes(
			attribute.String("train.type", in.TrainType),
			attribute.Int("train.number", in.TrainNumber),
			attribute.String("station.code", in.StationCode),
			attribute.String("arrival.date", in.ArrivalDate.String()),
		),
	)
	defer span.End()

	rec, err := s.build(ctx, in)
	if err != nil {
		return nil, s.fail(span, err)
	}

	probs, err := s.classify(ctx, rec)
	if err != nil {
		return nil, s.fail(span, err)
	}

	_, estSpan := s.tracer.Start(ctx, "estimator.Estimate")
	result := estimator.Estimate(probs)
	estSpan.End()

	span.SetAttributes(
		attribute.String("delay.category", result.Class.String()),
		attribute.Float64("delay.expected_minutes", result.ExpectedDelayMinutes),
	)

	if s.metrics != nil {
		s.metrics.RecordPrediction(result.Class.String(), result.ExpectedDelayMinutes)
	}

	s.logger.Debug().
		Str("train_type", in.TrainType).
		Int("train_number", rec.TrainNumber).
		Str("station", rec.StopStationCode).
		Float64("expected_delay", result.ExpectedDelayMinutes).
		Str("category", result.Class.String()).
		Msg("delay predicted")

	return &Prediction{
		Input:      in,
		Features:   rec,
		Result:     result,
		MostLikely: estimator.MostLikely(result.Probabilities),
	}, nil
}

func (s *Service) build(ctx context.Context, in features.RawInput) (features.Record, error) {
	_, span := s.tracer.Start(ctx, "features.Build")
	defer span.End()

	rec, err := features.Build(in, s.ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		return features.Record{}, err
	}
	return rec, nil
}

func (s *Service) classify(ctx context.Context, rec features.Record) (estimator.Probabilities, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.Predict")
	defer span.End()

	var timer *metrics.Timer
	if s.metrics != nil {
		timer = s.metrics.NewTimer(s.metrics.ClassifierDuration)
	}

	probs, err := s.classifier.Predict(ctx, rec)
	if timer != nil {
		timer.ObserveDuration()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier failed")
		var invErr *classifier.InvocationError
		if !errors.As(err, &invErr) {
			err = &classifier.InvocationError{Op: "predict", Err: err}
		}
		return estimator.Probabilities{}, err
	}

	// Not every Classifier runs Validate itself.
	if _, err := classifier.Validate(probs[:]); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed probabilities")
		return estimator.Probabilities{}, err
	}

	return probs, nil
}

func (s *Service) fail(span trace.Span, err error) error {
	kind := ErrorKind(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}

	event := s.logger.Warn()
	if kind == metrics.ErrorKindValidation {
		event = s.logger.Debug()
	}
	event.Err(err).Str("kind", kind).Msg("prediction failed")

	return err
}

// ErrorKind classifies a Predict error for metrics and logging.
func ErrorKind(err error) string {
	var (
		valErr *features.ValidationError
		invErr *classifier.InvocationError
	)
	switch {
	case errors.As(err, &valErr):
		return metrics.ErrorKindValidation
	case errors.Is(err, resilience.ErrCircuitOpen):
		return metrics.ErrorKindCircuitOpen
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ErrorKindCanceled
	case errors.As(err, &invErr):
		return metrics.ErrorKindClassifier
	default:
		return metrics.ErrorKindUnclassified
	}
}

// String describes the prediction for logs.
func (p *Prediction) String() string {
	return fmt.Sprintf("%s %d at %s: %.2f min (%s)",
		p.Input.TrainType, p.Features.TrainNumber, p.Features.StopStationCode,
		p.Result.DisplayDelay(), p.Result.Class)
}
