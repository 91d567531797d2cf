package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("chatty"))
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn).With("ModelService")

	logger.Info("built table with %d records", 288)
	logger.Debug("noise")
	assert.Empty(t, buf.String())

	logger.Warn("slot %s has no observations", "09:20")
	out := buf.String()
	assert.Contains(t, out, "slot 09:20 has no observations")
	assert.Contains(t, out, "component=ModelService")
	assert.Contains(t, out, "level=warning")
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}
