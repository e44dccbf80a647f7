package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildelay/raildelay/internal/metrics"
)

func TestCollector_RecordPrediction(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordPrediction("SLIGHT", 2.2)
	c.RecordPrediction("SLIGHT", 3.1)
	c.RecordPrediction("ON_TIME", 1.0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PredictionsTotal.WithLabelValues("SLIGHT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PredictionsTotal.WithLabelValues("ON_TIME")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.ExpectedDelayMinutes))
}

func TestCollector_RecordError(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordError(metrics.ErrorKindValidation)
	c.RecordError(metrics.ErrorKindValidation)
	c.RecordError(metrics.ErrorKindCircuitOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PredictionErrorsTotal.WithLabelValues("validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PredictionErrorsTotal.WithLabelValues("circuit_open")))
}

func TestCollector_Independent(t *testing.T) {
	a := metrics.NewCollector()
	b := metrics.NewCollector()

	a.RecordError(metrics.ErrorKindClassifier)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.PredictionErrorsTotal.WithLabelValues("classifier")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PredictionErrorsTotal.WithLabelValues("classifier")))
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordPrediction("MAJOR", 7.5)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `raildelay_predictions_total{category="MAJOR"} 1`)
	assert.Contains(t, string(body), "raildelay_expected_delay_minutes_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := metrics.NewCollector()

	timer := c.NewTimer(c.ClassifierDuration)
	time.Sleep(time.Millisecond)
	d := timer.ObserveDuration()

	assert.Positive(t, d)
	assert.Equal(t, 1, testutil.CollectAndCount(c.ClassifierDuration))
}
