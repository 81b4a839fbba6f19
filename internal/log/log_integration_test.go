package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "playdeck.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))

	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
}

func TestLevels(t *testing.T) {
	t.Run("InfoDropsDebug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "info")

		logger.Debug("hidden")
		logger.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("TraceOnlyWhenRequested", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "debug").Trace("ipc line")
		assert.Empty(t, buf.String())

		NewWithWriter(&buf, "trace").Trace("ipc line")
		assert.Contains(t, buf.String(), "TRACE: ipc line")
	})

	t.Run("WithCarriesAttributes", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "info").With("backend", "native").Info("mounted")
		assert.Contains(t, buf.String(), `"backend":"native"`)
	})

	t.Run("UnknownLevelDefaultsToInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "verbose")
		logger.Debug("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestDefaultLoggerDiscardsWhenUnset(t *testing.T) {
	SetDefaultLogger(nil)
	assert.NotPanics(t, func() {
		Info("nobody is listening")
		Trace("nor here")
	})
}
