package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("barcode", "123").Msg("lookup failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "lookup failed", entry["message"])
	assert.Equal(t, "123", entry["barcode"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewConsoleDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "not-a-level"}, &buf)

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLevelIsCaseInsensitive(t *testing.T) {
	logger := New(Config{Level: "DEBUG", Format: "json"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestInitInstallsGlobalLogger(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	logger := Init(Config{Level: "info", Format: "json"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	log.Info().Msg("from global")
	assert.Contains(t, buf.String(), `"message":"from global"`)
}
