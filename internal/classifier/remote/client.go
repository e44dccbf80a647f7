// Package remote calls a model-serving endpoint that hosts the trained
// delay classifier.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/estimator"
	"github.com/raildelay/raildelay/internal/features"
	"github.com/raildelay/raildelay/internal/provider/resilience"
)

// ProviderName identifies this classifier in the provider registry.
const ProviderName = "model-server"

// ErrNoPrediction is returned when the server answers without a row of
// probabilities for the submitted instance.
var ErrNoPrediction = errors.New("response holds no prediction")

// ClientConfig holds configuration for the model server client.
type ClientConfig struct {
	// BaseURL is the model server base URL (required).
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a classifier backed by a remote model server.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new model server client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Predict sends rec to the model server and validates the returned
// probability vector. Every failure is an *classifier.InvocationError.
func (c *Client) Predict(ctx context.Context, rec features.Record) (estimator.Probabilities, error) {
	raw, err := c.fetch(ctx, rec)
	if err != nil {
		c.logger.Warn().Err(err).Int("train_number", rec.TrainNumber).Msg("model server call failed")
		return estimator.Probabilities{}, &classifier.InvocationError{Op: "predict", Err: err}
	}

	probs, err := classifier.Validate(raw)
	if err != nil {
		c.logger.Warn().Err(err).Floats64("raw", raw).Msg("model server returned malformed probabilities")
		return estimator.Probabilities{}, err
	}

	return probs, nil
}

func (c *Client) fetch(ctx context.Context, rec features.Record) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: []features.Record{rec}})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(pr.Probabilities) != 1 {
		return nil, fmt.Errorf("%w: got %d rows", ErrNoPrediction, len(pr.Probabilities))
	}

	c.logger.Debug().
		Int("train_number", rec.TrainNumber).
		Floats64("probabilities", pr.Probabilities[0]).
		Msg("model server prediction")

	return pr.Probabilities[0], nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Model server wire format.

type predictRequest struct {
	Instances []features.Record `json:"instances"`
}

type predictResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
}
