package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	BatchJob         *BatchJob

	// MaxOutstandingMessages bounds in-flight messages. Default: 10
	MaxOutstandingMessages int

	Logger zerolog.Logger
}

// JobMessage is the payload of a worker message.
type JobMessage struct {
	JobType string `json:"job_type"`
	JobID   string `json:"job_id,omitempty"`
	Items   []Item `json:"items,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	maxOutstanding := cfg.MaxOutstandingMessages
	if maxOutstanding <= 0 {
		maxOutstanding = 10
	}
	subscriber.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       NewDispatcher(cfg.BatchJob, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if h.dispatcher.Dispatch(logger.WithContext(ctx), msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// Dispatcher routes decoded job messages to the batch job.
type Dispatcher struct {
	job    *BatchJob
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(job *BatchJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, logger: logger}
}

// Dispatch handles one message payload and reports whether it should be
// acknowledged. Messages that can never succeed (malformed, unknown job
// type, oversized, invalid items only) are acknowledged so they are not
// redelivered.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) bool {
	startTime := time.Now()

	logger := d.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = *l
	}

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return true
	}

	if msg.JobID == "" {
		msg.JobID = "job_" + uuid.NewString()
	}
	logger = logger.With().Str("job_id", msg.JobID).Str("job_type", msg.JobType).Logger()

	var err error
	switch msg.JobType {
	case JobTypePredict:
		err = d.handlePredict(ctx, msg)
	case JobTypeHealthCheck:
		err = d.job.HealthCheck(ctx)
	default:
		logger.Warn().Msg("unknown job type")
		return true
	}

	if errors.Is(err, ErrTooManyItems) {
		logger.Error().Err(err).Msg("job rejected")
		return true
	}
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		return false
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}

func (d *Dispatcher) handlePredict(ctx context.Context, msg JobMessage) error {
	result, err := d.job.Run(ctx, msg.JobID, msg.Items)
	if err != nil {
		return err
	}

	if result.Retryable() {
		return fmt.Errorf("%d of %d items failed", result.Failed, result.Total)
	}
	return nil
}
