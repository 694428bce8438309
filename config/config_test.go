package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blixt/go-switchboard/announce"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "lobby", cfg.DefaultServer)
	assert.Equal(t, 256, cfg.ClientBuffer)
	assert.Equal(t, announce.ModeDistinct, cfg.Announce.Mode)
	assert.Equal(t, announce.Yellow, cfg.Announce.Color)
	assert.True(t, cfg.AllowsServer("anything"))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "switchboard.yaml", `
addr: ":9000"
servers: [hub, survival]
client_buffer: 32
log:
  level: debug
  format: json
announce:
  mode: collapsed
  color: gold
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"hub", "survival"}, cfg.Servers)
	assert.Equal(t, "hub", cfg.DefaultServer)
	assert.Equal(t, 32, cfg.ClientBuffer)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Logging().Format)
	assert.Equal(t, announce.ModeCollapsed, cfg.Announce.Mode)
	assert.Equal(t, announce.Gold, cfg.Announce.Color)
	assert.True(t, cfg.AllowsServer("survival"))
	assert.False(t, cfg.AllowsServer("creative"))
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "switchboard.yaml", "addr: \":9000\"\nannounce:\n  color: gold\n")
	dotenv := writeFile(t, ".env", "SWITCHBOARD_ADDR=:7000\nSWITCHBOARD_ANNOUNCE_COLOR=aqua\nSWITCHBOARD_SERVERS=a,b\n")
	t.Setenv("SWITCHBOARD_ANNOUNCE_COLOR", "red")

	cfg, err := Load(path, dotenv, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, announce.Red, cfg.Announce.Color)
	assert.Equal(t, []string{"a", "b"}, cfg.Servers)
	assert.Equal(t, "a", cfg.DefaultServer)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"bad mode":       "announce:\n  mode: three\n",
		"bad color":      "announce:\n  color: magenta\n",
		"bad level":      "log:\n  level: loud\n",
		"bad default":    "servers: [a]\ndefault_server: b\n",
		"bad buffer":     "client_buffer: -1\n",
		"malformed yaml": "addr: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "switchboard.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
