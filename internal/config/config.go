// Package config loads settings from defaults, an optional TOML file and
// the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileEnv names the environment variable pointing at a TOML config file.
const FileEnv = "RIPPLE_CONFIG"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreREST   = "rest"
)

// Config holds the application configuration.
type Config struct {
	Store    StoreConfig `toml:"store"`
	Log      LogConfig   `toml:"log"`
	Game     GameConfig  `toml:"game"`
	HTTPAddr string      `toml:"http_addr" env:"RIPPLE_HTTP_ADDR"`
	// GeminiAPIKey is only needed by the Gemini autoplayer.
	GeminiAPIKey string `toml:"gemini_api_key" env:"GEMINI_API_KEY"`
}

type StoreConfig struct {
	Kind      string `toml:"kind" env:"RIPPLE_STORE"`
	File      string `toml:"file" env:"RIPPLE_DATA_FILE"`
	SQLite    string `toml:"sqlite" env:"RIPPLE_SQLITE_PATH"`
	RESTURL   string `toml:"rest_url" env:"RIPPLE_REST_URL"`
	RESTKey   string `toml:"rest_key" env:"RIPPLE_REST_KEY"`
	CacheSize int    `toml:"cache_size" env:"RIPPLE_CACHE_SIZE"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"RIPPLE_LOG_LEVEL"`
	Format string `toml:"format" env:"RIPPLE_LOG_FORMAT"`
}

type GameConfig struct {
	// Catalog is an optional quest catalog file replacing the built-in one.
	Catalog     string   `toml:"catalog" env:"RIPPLE_CATALOG"`
	ReflexLimit Duration `toml:"reflex_limit" env:"RIPPLE_REFLEX_LIMIT"`
}

// Duration reads "750ms" style values from both TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Kind:      StoreFile,
			File:      ".saves/realms.yaml",
			SQLite:    ".saves/realms.db",
			CacheSize: 1024,
		},
		Log:      LogConfig{Level: "info", Format: "text"},
		Game:     GameConfig{ReflexLimit: Duration{time.Second}},
		HTTPAddr: ":8080",
	}
}

// LoadConfig loads .env if present, then the file named by RIPPLE_CONFIG,
// then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var data []byte
	if path := os.Getenv(FileEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		data = b
	}
	return Parse(data, env.Options{})
}

// Parse layers TOML data and the environment in opts over the defaults.
func Parse(data []byte, opts env.Options) (*Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile:
		if c.Store.File == "" {
			return errors.New("file store needs a data file path")
		}
	case StoreSQLite:
		if c.Store.SQLite == "" {
			return errors.New("sqlite store needs a database path")
		}
	case StoreREST:
		if c.Store.RESTURL == "" {
			return errors.New("rest store needs a base URL")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.CacheSize < 0 {
		return fmt.Errorf("cache size %d is negative", c.Store.CacheSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Game.ReflexLimit.Duration <= 0 {
		return errors.New("reflex limit must be positive")
	}
	return nil
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
