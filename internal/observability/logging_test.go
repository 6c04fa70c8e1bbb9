package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dropcalc/internal/config"
)

func TestNewLogger_JSONWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("simulation complete", zap.Int("trials", 250), zap.String("run_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "simulation complete", entry["msg"])
	assert.Equal(t, 250.0, entry["trials"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Contains(t, entry, "ts")
}

func TestNewLogger_ConsoleWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug("loaded drop table", zap.String("monster", "Vet'ion"))
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "loaded drop table")
	assert.Contains(t, buf.String(), `"monster": "Vet'ion"`)
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Debug("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewLogger_AllLevelsEnabled(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(config.LoggingConfig{Level: level, Format: "json"}, &bytes.Buffer{})
		require.NoError(t, err, "level %q should be valid", level)
		assert.True(t, logger.Core().Enabled(zap.ErrorLevel), "level %q must keep errors", level)
	}
}
