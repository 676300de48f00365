package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrPrefix    = errors.New("prefix must be exactly one character")
	ErrLogFormat = errors.New("log format must be text or json")
)

type Config struct {
	Token        string        `env:"DISCORD_TOKEN,required,notEmpty"`
	Prefix       string        `env:"BOT_PREFIX" envDefault:"!"`
	Logging      bool          `env:"BOT_LOGGING" envDefault:"true"`
	ReadyTimeout time.Duration `env:"READY_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	MetricsAddr string `env:"METRICS_ADDR"`

	LavalinkHost     string `env:"LAVALINK_HOST"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, relying on environment variables", slog.Any("error", err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Prefix) != 1 {
		return fmt.Errorf("%w: %q", ErrPrefix, c.Prefix)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrLogFormat, c.LogFormat)
	}
	return nil
}

// PrefixRune returns the command prefix character.
func (c *Config) PrefixRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Prefix)
	return r
}

// MusicEnabled reports whether a Lavalink node is configured.
func (c *Config) MusicEnabled() bool {
	return c.LavalinkHost != ""
}
