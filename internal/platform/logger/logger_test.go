package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistflow/internal/platform/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Logging{Level: "warn", Format: "json"})

	log.Info("dropped")
	log.Warn("kept", "email", "a@example.com")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "assistflow", line["service"])
	assert.Equal(t, "a@example.com", line["email"])
}

func TestNewWithWriter_TextAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Logging{Level: "verbose", Format: "TEXT"})

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
