package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildelay/raildelay/internal/bootstrap"
	"github.com/raildelay/raildelay/internal/classifier/remote"
	"github.com/raildelay/raildelay/internal/classifier/static"
	"github.com/raildelay/raildelay/internal/provider/resilience"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REFDATA_SOURCE", "REFDATA_FILE", "CLASSIFIER_MODE", "CLASSIFIER_URL",
		"CLASSIFIER_API_KEY", "CLASSIFIER_TIMEOUT", "CLASSIFIER_MAX_RETRIES", "CLASSIFIER_STATIC_PROBS",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := bootstrap.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, bootstrap.RefDataBuiltin, cfg.RefDataSource)
	assert.Equal(t, bootstrap.ClassifierStatic, cfg.ClassifierMode)
	assert.Equal(t, 5*time.Second, cfg.ClassifierTimeout)
	assert.EqualValues(t, 2, cfg.ClassifierRetries)
	assert.Equal(t, []float64{0.7, 0.2, 0.1}, cfg.StaticProbs)
}

func TestConfigFromEnv_Remote(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSIFIER_MODE", "remote")
	t.Setenv("CLASSIFIER_URL", "http://model-server:8501")
	t.Setenv("CLASSIFIER_TIMEOUT", "750ms")
	t.Setenv("CLASSIFIER_MAX_RETRIES", "0")

	cfg, err := bootstrap.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://model-server:8501", cfg.ClassifierURL)
	assert.Equal(t, 750*time.Millisecond, cfg.ClassifierTimeout)
	assert.EqualValues(t, 0, cfg.ClassifierRetries)
}

func TestConfigFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"remote without url", map[string]string{"CLASSIFIER_MODE": "remote"}},
		{"file without path", map[string]string{"REFDATA_SOURCE": "file"}},
		{"bad timeout", map[string]string{"CLASSIFIER_TIMEOUT": "soon"}},
		{"bad retries", map[string]string{"CLASSIFIER_MAX_RETRIES": "-1"}},
		{"bad probabilities", map[string]string{"CLASSIFIER_STATIC_PROBS": "0.5,half"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := bootstrap.ConfigFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReferenceData(t *testing.T) {
	ctx := context.Background()

	ref, err := bootstrap.LoadReferenceData(ctx, bootstrap.Config{RefDataSource: bootstrap.RefDataBuiltin}, zerolog.Nop())
	require.NoError(t, err)
	n, err := ref.DefaultTrainNumber("Nightjet")
	require.NoError(t, err)
	assert.Equal(t, 420, n)

	path := filepath.Join(t.TempDir(), "refdata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trainTypes:
  - name: Sprinter
    company: NS
    numbers: [5108, 4117]
stations:
  - code: UT
    name: Utrecht Centraal
platforms: ["1", "2"]
`), 0o600))

	ref, err = bootstrap.LoadReferenceData(ctx, bootstrap.Config{RefDataSource: bootstrap.RefDataFile, RefDataFile: path}, zerolog.Nop())
	require.NoError(t, err)
	n, err = ref.DefaultTrainNumber("Sprinter")
	require.NoError(t, err)
	assert.Equal(t, 5108, n)

	_, err = bootstrap.LoadReferenceData(ctx, bootstrap.Config{RefDataSource: "s3"}, zerolog.Nop())
	assert.ErrorIs(t, err, bootstrap.ErrUnknownOption)
}

func TestNewClassifier(t *testing.T) {
	registry := resilience.NewRegistry()

	c, err := bootstrap.NewClassifier(bootstrap.Config{
		ClassifierMode: bootstrap.ClassifierStatic,
		StaticProbs:    []float64{0.5, 0.3, 0.2},
	}, registry, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &static.Classifier{}, c)
	assert.Equal(t, 0, registry.ProviderCount())

	c, err = bootstrap.NewClassifier(bootstrap.Config{
		ClassifierMode:    bootstrap.ClassifierRemote,
		ClassifierURL:     "http://model-server:8501",
		ClassifierTimeout: time.Second,
	}, registry, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &remote.Client{}, c)
	assert.NotNil(t, registry.GetHealth(remote.ProviderName))

	_, err = bootstrap.NewClassifier(bootstrap.Config{
		ClassifierMode: bootstrap.ClassifierStatic,
		StaticProbs:    []float64{0.5, 0.5},
	}, registry, zerolog.Nop())
	assert.Error(t, err)

	_, err = bootstrap.NewClassifier(bootstrap.Config{ClassifierMode: "onnx"}, registry, zerolog.Nop())
	assert.ErrorIs(t, err, bootstrap.ErrUnknownOption)
}
