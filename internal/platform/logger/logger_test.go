package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		var buf bytes.Buffer
		NewWriter(&buf, "info", "").Info("region table loaded", "entries", 3)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "region table loaded", line["msg"])
		assert.Equal(t, float64(3), line["entries"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		NewWriter(&buf, "info", "text").Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWriter(&buf, "warn", "json")
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
