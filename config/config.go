// Package config handles application configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

const (
	appName        = "tempo"
	configFileName = "config.toml"
)

// Defaults applied before the file and the environment are read.
const (
	DefaultLocale        = "en_US"
	DefaultLogLevel      = "info"
	DefaultDDragonURL    = "https://ddragon.leagueoflegends.com"
	DefaultEpsilon       = 0.01
	DefaultHotkey        = "ctrl+shift+t"
	DefaultLiveClientURL = "https://127.0.0.1:2999"
	DefaultPollInterval  = 500 * time.Millisecond
)

// Config represents the application configuration.
// Values come from defaults, then config.toml, then TEMPO_* environment variables.
type Config struct {
	DataDir    string  `toml:"data_dir" env:"TEMPO_DATA_DIR"`
	Locale     string  `toml:"locale" env:"TEMPO_LOCALE"`
	LogLevel   string  `toml:"log_level" env:"TEMPO_LOG_LEVEL"`
	DDragonURL string  `toml:"ddragon_url" env:"TEMPO_DDRAGON_URL"`
	Epsilon    float64 `toml:"epsilon" env:"TEMPO_EPSILON"`
	Hotkey     string  `toml:"hotkey" env:"TEMPO_HOTKEY"`

	LiveClient LiveClientConfig `toml:"live_client"`

	path string
}

// LiveClientConfig controls polling of the local game client API.
type LiveClientConfig struct {
	Enabled      bool          `toml:"enabled" env:"TEMPO_LIVE_CLIENT"`
	URL          string        `toml:"url" env:"TEMPO_LIVE_CLIENT_URL"`
	PollInterval time.Duration `toml:"poll_interval" env:"TEMPO_POLL_INTERVAL"`
}

// Load loads configuration from the default config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from path, applying environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// StorePath returns the badger directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "store")
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// normalize validates values and fills derived defaults.
func (c *Config) normalize() error {
	if c.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("get user config dir: %w", err)
		}
		c.DataDir = filepath.Join(dir, appName)
	}

	locale, err := DDragonLocale(c.Locale)
	if err != nil {
		return err
	}
	c.Locale = locale

	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", c.Epsilon)
	}
	if c.LiveClient.PollInterval <= 0 {
		c.LiveClient.PollInterval = DefaultPollInterval
	}
	c.DDragonURL = strings.TrimRight(c.DDragonURL, "/")
	return nil
}

// DDragonLocale converts a BCP 47 tag ("en-US", "ko_kr") into Data Dragon form ("en_US").
func DDragonLocale(tag string) (string, error) {
	if tag == "" {
		return DefaultLocale, nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", tag, err)
	}
	base, _ := t.Base()
	region, _ := t.Region()
	return base.String() + "_" + region.String(), nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		Locale:     DefaultLocale,
		LogLevel:   DefaultLogLevel,
		DDragonURL: DefaultDDragonURL,
		Epsilon:    DefaultEpsilon,
		Hotkey:     DefaultHotkey,
		LiveClient: LiveClientConfig{
			URL:          DefaultLiveClientURL,
			PollInterval: DefaultPollInterval,
		},
	}
}

// Default returns the built-in configuration, used when loading fails.
func Default() *Config {
	cfg := defaultConfig()
	if path, err := configPath(); err == nil {
		cfg.path = path
	}
	_ = cfg.normalize()
	return cfg
}
