package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{JSON: true})
	log.Info().Str("action", "SAVE_CLIENT").Msg("remote call")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "SAVE_CLIENT", entry["action"])
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{JSON: true})
	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log = New(&buf, Options{JSON: true, Verbose: true})
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = New(&buf, Options{JSON: true, Quiet: true})
	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{})
	log.Warn().Msg("using local data")
	assert.Contains(t, buf.String(), "using local data")
}
