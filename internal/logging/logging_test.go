package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"", log.InfoLevel},
		{"chatty", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := New(Options{Level: tt.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("parsed statement", "rows", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed statement", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestComponentUsesDefault(t *testing.T) {
	previous := log.Default()
	t.Cleanup(func() { log.SetDefault(previous) })

	var buf bytes.Buffer
	Setup(Options{Level: "info", Format: "logfmt", Output: &buf})

	Component("parsers").Warn("skipping row", "line", 7)

	out := buf.String()
	assert.Contains(t, out, "parsers")
	assert.Contains(t, out, "skipping row")
	assert.Contains(t, out, "line=7")
}
