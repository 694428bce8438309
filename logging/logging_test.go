package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"trace":   zerolog.TraceLevel,
		"Debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	restoreGlobalLevel(t)
	var buf bytes.Buffer
	log, closeLog, err := New(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closeLog()

	log.Info().Msg("hidden")
	log.Warn().Str("server", "lobby").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"server":"lobby"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestNewFile(t *testing.T) {
	restoreGlobalLevel(t)
	path := filepath.Join(t.TempDir(), "switchboard.log")
	var buf bytes.Buffer
	log, closeLog, err := New(Config{Level: "info", Format: "console", File: path}, &buf)
	require.NoError(t, err)

	log.Info().Msg("to both")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNewRejectsBadConfig(t *testing.T) {
	restoreGlobalLevel(t)
	_, _, err := New(Config{Level: "shout"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
