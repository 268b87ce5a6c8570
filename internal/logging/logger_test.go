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

func TestInit_JSONOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	require.NoError(t, initWriter(&buf, "debug", "json"))
	log.Debug().Str("symbol", "ETHUSDT").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "ETHUSDT", entry["symbol"])
	assert.Equal(t, "hello", entry["message"])
}

func TestInit_LevelFilters(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	require.NoError(t, initWriter(&buf, "WARN", "json"))
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInit_BadLevel(t *testing.T) {
	assert.Error(t, Init("chatty", "console"))
}
