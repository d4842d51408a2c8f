package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastlab/forecastlab/internal/config"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_StructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Info("forecast complete", "model", "naive", "horizon", 14)

	entry := logLine(t, &buf)
	assert.Equal(t, "forecast complete", entry["message"])
	assert.Equal(t, "naive", entry["model"])
	assert.Equal(t, float64(14), entry["horizon"])
}

func TestLogger_ErrorFieldRendersMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Error("request failed", "error", errors.New("boom"))

	entry := logLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.WarnLevel)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel).With("component", "engine")

	logger.Info("dispatch")

	entry := logLine(t, &buf)
	assert.Equal(t, "engine", entry["component"])
}

func TestLogger_OddFieldCountIgnoresTrailingKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Info("partial", "model", "naive", "dangling")

	entry := logLine(t, &buf)
	assert.Equal(t, "naive", entry["model"])
	_, exists := entry["dangling"]
	assert.False(t, exists)
}

func TestNewFromConfig(t *testing.T) {
	logger, err := NewFromConfig(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Unknown levels fall back instead of failing
	logger, err = NewFromConfig(config.LoggingConfig{
		Level:  "verbose",
		Format: "json",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestSetGlobal(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)
	SetGlobal(logger)

	assert.Same(t, logger, Global())
}
