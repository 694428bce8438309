package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blixt/go-switchboard/announce"
	"github.com/blixt/go-switchboard/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SWITCHBOARD_"

// Config holds the application configuration
type Config struct {
	Addr          string         `yaml:"addr" env:"ADDR"`
	DefaultServer string         `yaml:"default_server" env:"DEFAULT_SERVER"`
	Servers       []string       `yaml:"servers" env:"SERVERS" envSeparator:","` // Allowed backends; empty allows any
	ClientBuffer  int            `yaml:"client_buffer" env:"CLIENT_BUFFER"`      // Per-session outgoing queue
	Log           LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Announce      AnnounceConfig `yaml:"announce" envPrefix:"ANNOUNCE_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

func (c LogConfig) Logging() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format, File: c.File}
}

// AnnounceConfig holds announcement settings. Mode and Color are filled in
// from ModeName and ColorName by Load.
type AnnounceConfig struct {
	ModeName  string `yaml:"mode" env:"MODE"`
	ColorName string `yaml:"color" env:"COLOR"`

	Mode  announce.Mode  `yaml:"-"`
	Color announce.Color `yaml:"-"`
}

// Load reads configuration from the YAML file at path (skipped when path is
// empty), then applies variables from envFiles and finally from the process
// environment. Process variables win over env files. Missing env files are
// ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	environ, err := readEnv(envFiles)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readEnv(files []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		merged[k] = v
	}
	return merged, nil
}

func (cfg *Config) setDefaults() error {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ClientBuffer == 0 {
		cfg.ClientBuffer = 256
	}
	if cfg.ClientBuffer < 0 {
		return fmt.Errorf("client_buffer must be positive, got %d", cfg.ClientBuffer)
	}
	if cfg.DefaultServer == "" {
		if len(cfg.Servers) > 0 {
			cfg.DefaultServer = cfg.Servers[0]
		} else {
			cfg.DefaultServer = "lobby"
		}
	}
	if len(cfg.Servers) > 0 && !slices.Contains(cfg.Servers, cfg.DefaultServer) {
		return fmt.Errorf("default_server %q is not in servers", cfg.DefaultServer)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	mode, err := announce.ParseMode(cfg.Announce.ModeName)
	if err != nil {
		return fmt.Errorf("announce.mode: %w", err)
	}
	cfg.Announce.Mode = mode

	color, err := announce.ParseColor(cfg.Announce.ColorName)
	if err != nil {
		return fmt.Errorf("announce.color: %w", err)
	}
	cfg.Announce.Color = color
	return nil
}

// AllowsServer reports whether a backend with this id may be created.
func (cfg *Config) AllowsServer(id string) bool {
	return len(cfg.Servers) == 0 || slices.Contains(cfg.Servers, id)
}
