package logger

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Int64("player_id", 7).Msg("fetched")

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fetched", line["message"])
	assert.Equal(t, "dota-leaderboard", line["service"])
	assert.EqualValues(t, 7, line["player_id"])
	assert.Contains(t, line, "caller")
}
