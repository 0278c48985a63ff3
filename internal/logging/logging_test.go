package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"Error":   LogLevelError,
		"bogus":   LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LogLevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown %d", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")

	l.SetLevel(LogLevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestFieldsAndJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Format: FormatJSON}).WithComponent("history").WithField("depth", 3)
	l.Info("recorded")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "recorded", rec["msg"])
	assert.Equal(t, "history", rec["component"])
	assert.EqualValues(t, 3, rec["depth"])
}

func TestDisableIsShared(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Output: &buf})
	child := root.WithComponent("view")
	root.Disable()
	child.Error("dropped")
	assert.Empty(t, strings.TrimSpace(buf.String()))

	root.Enable()
	child.Error("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "component=view")
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Enabled(LogLevelError))
	assert.NotNil(t, OrNop(nil))
}
