package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/features"
	"github.com/raildelay/raildelay/internal/metrics"
	"github.com/raildelay/raildelay/internal/prediction"
)

// ErrTooManyItems is returned when a batch exceeds BatchConfig.MaxItems.
var ErrTooManyItems = errors.New("batch exceeds item limit")

// Predictor runs the delay prediction pipeline. *prediction.Service
// satisfies it.
type Predictor interface {
	Predict(ctx context.Context, in features.RawInput) (*prediction.Prediction, error)
	DefaultTrainNumber(trainType string) (int, error)
}

// Item is one trip to score, in the message's wire format. Optional fields
// default as in prediction.Resolve.
type Item struct {
	TrainType   string `json:"train_type"`
	TrainNumber *int   `json:"train_number,omitempty"`
	StationCode string `json:"station_code"`
	Platform    string `json:"platform,omitempty"`
	ArrivalDate string `json:"arrival_date,omitempty"`
	ArrivalTime string `json:"arrival_time,omitempty"`
}

// BatchJob scores items with a bounded pool of goroutines.
type BatchJob struct {
	config    BatchConfig
	predictor Predictor
	logger    zerolog.Logger

	statsMu sync.RWMutex
	stats   BatchStats
}

// BatchStats tracks totals across runs.
type BatchStats struct {
	Runs          int64
	ItemsScored   int64
	ItemsRejected int64
	ItemsFailed   int64
	LastRunAt     time.Time
	LastDuration  time.Duration
	TotalDuration time.Duration
}

// BatchJobConfig holds configuration for creating a BatchJob.
type BatchJobConfig struct {
	Config    BatchConfig
	Predictor Predictor
	Logger    zerolog.Logger
}

// NewBatchJob creates a new batch scoring job.
func NewBatchJob(cfg BatchJobConfig) *BatchJob {
	return &BatchJob{
		config:    cfg.Config.withDefaults(),
		predictor: cfg.Predictor,
		logger:    cfg.Logger,
	}
}

// BatchResult is the outcome of one Run.
type BatchResult struct {
	JobID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Total     int

	// Scored items succeeded. Rejected items had invalid input. Failed
	// items hit a classifier or internal error and may succeed on retry.
	Scored   int
	Rejected int
	Failed   int

	Errors []ItemError
}

// Retryable reports whether redelivering the message could help: at
// least one item failed for a reason other than its input.
func (r *BatchResult) Retryable() bool {
	return r.Failed > 0
}

// ItemError describes an item that was not scored.
type ItemError struct {
	Index int
	Kind  string
	Error string
}

type itemResult struct {
	index int
	pred  *prediction.Prediction
	err   error
}

// Run scores every item and logs each prediction. Results are not stored.
func (j *BatchJob) Run(ctx context.Context, jobID string, items []Item) (*BatchResult, error) {
	if len(items) > j.config.MaxItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(items), j.config.MaxItems)
	}

	startTime := time.Now()
	result := &BatchResult{
		JobID:     jobID,
		StartTime: startTime,
		Total:     len(items),
	}

	logger := j.logger.With().Str("job_id", jobID).Logger()
	logger.Info().
		Int("items", len(items)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting batch prediction job")

	indexes := make(chan int, len(items))
	results := make(chan itemResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.scoreWorker(ctx, items, indexes, results)
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)

	go func() {
		wg.Wait()
		close(results)
	}()

	for ir := range results {
		if ir.err == nil {
			result.Scored++
			logger.Info().
				Int("index", ir.index).
				Str("train_type", ir.pred.Input.TrainType).
				Int("train_number", ir.pred.Features.TrainNumber).
				Str("station", ir.pred.Features.StopStationCode).
				Float64("expected_delay", ir.pred.Result.DisplayDelay()).
				Str("category", ir.pred.Result.Class.String()).
				Str("most_likely", ir.pred.MostLikely.String()).
				Msg("prediction")
			continue
		}

		kind := prediction.ErrorKind(ir.err)
		if kind == metrics.ErrorKindValidation {
			result.Rejected++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, ItemError{Index: ir.index, Kind: kind, Error: ir.err.Error()})
	}

	// Items never picked up because ctx ended count as failed.
	if missing := result.Total - result.Scored - result.Rejected - result.Failed; missing > 0 {
		result.Failed += missing
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateStats(result)

	logger.Info().
		Dur("duration", result.Duration).
		Int("scored", result.Scored).
		Int("rejected", result.Rejected).
		Int("failed", result.Failed).
		Msg("batch prediction job completed")

	return result, nil
}

func (j *BatchJob) scoreWorker(ctx context.Context, items []Item, indexes <-chan int, results chan<- itemResult) {
	for i := range indexes {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.scoreItem(ctx, i, items[i])
		}
	}
}

func (j *BatchJob) scoreItem(ctx context.Context, index int, item Item) itemResult {
	in, err := prediction.Resolve(prediction.Request{
		TrainType:   item.TrainType,
		TrainNumber: item.TrainNumber,
		StationCode: item.StationCode,
		Platform:    item.Platform,
		ArrivalDate: item.ArrivalDate,
		ArrivalTime: item.ArrivalTime,
	}, j.predictor, time.Now())
	if err != nil {
		return itemResult{index: index, err: err}
	}

	itemCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	pred, err := j.predictor.Predict(itemCtx, in)
	return itemResult{index: index, pred: pred, err: err}
}

// HealthCheck scores the configured canary trip through the live
// classifier.
func (j *BatchJob) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	pred, err := j.predictor.Predict(ctx, j.config.Canary)
	if err != nil {
		return fmt.Errorf("canary prediction: %w", err)
	}

	j.logger.Debug().Stringer("prediction", pred).Msg("health check passed")
	return nil
}

func (j *BatchJob) updateStats(result *BatchResult) {
	j.statsMu.Lock()
	defer j.statsMu.Unlock()

	j.stats.Runs++
	j.stats.ItemsScored += int64(result.Scored)
	j.stats.ItemsRejected += int64(result.Rejected)
	j.stats.ItemsFailed += int64(result.Failed)
	j.stats.LastRunAt = result.EndTime
	j.stats.LastDuration = result.Duration
	j.stats.TotalDuration += result.Duration
}

// Stats returns a copy of the accumulated statistics.
func (j *BatchJob) Stats() BatchStats {
	j.statsMu.RLock()
	defer j.statsMu.RUnlock()
	return j.stats
}

// StatsSnapshot returns the statistics as log-friendly fields.
func (j *BatchJob) StatsSnapshot() map[string]any {
	s := j.Stats()
	return map[string]any{
		"runs":           s.Runs,
		"items_scored":   s.ItemsScored,
		"items_rejected": s.ItemsRejected,
		"items_failed":   s.ItemsFailed,
		"last_run_at":    s.LastRunAt,
		"last_duration":  s.LastDuration.String(),
		"total_duration": s.TotalDuration.String(),
	}
}
