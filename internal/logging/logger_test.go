package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestLogger_SubAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Sub("engine").With("pass", "abc123")

	log.Debug().Msg("hi")

	out := buf.String()
	assert.Contains(t, out, `"subsystem":"engine"`)
	assert.Contains(t, out, `"pass":"abc123"`)
}

func TestLogger_Nop(t *testing.T) {
	// Must not panic and must stay silent.
	Nop().Error().Msg("nothing")
}

func TestParseLevel_Unknown(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "bogus")

	log.Info().Msg("default level is info")
	assert.Contains(t, buf.String(), "default level is info")
}
