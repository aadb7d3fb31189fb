package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/rmacdonaldsmith/tagsub-go/internal/wire"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// Prefix is the environment variable prefix, e.g. TAGSUB_STRATEGY.
const Prefix = "TAGSUB"

var (
	// ErrInvalidBenchSubscriptions is returned when the benchmark size is not positive
	ErrInvalidBenchSubscriptions = errors.New("bench subscriptions must be positive")
	// ErrInvalidLogFormat is returned for a log format other than console or json
	ErrInvalidLogFormat = errors.New("log format must be console or json")
)

// Config holds the settings shared by the tagsub commands.
// Values come from TAGSUB_ environment variables; command-line flags override them.
type Config struct {
	// Strategy selects the matching strategy: linear or tree
	Strategy string `envconfig:"STRATEGY" default:"tree"`

	// EventFormat is the framing of event streams: jsonl or proto
	EventFormat string `envconfig:"EVENT_FORMAT" default:"jsonl"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// BenchSubscriptions is the number of identical subscriptions the bench command registers
	BenchSubscriptions int `envconfig:"BENCH_SUBSCRIPTIONS" default:"1000"`
}

// New loads the configuration from the environment and validates it.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if _, err := c.ParsedStrategy(); err != nil {
		return err
	}
	if _, err := c.ParsedEventFormat(); err != nil {
		return err
	}
	if _, err := c.ParsedLogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	if c.BenchSubscriptions <= 0 {
		return ErrInvalidBenchSubscriptions
	}
	return nil
}

// ParsedStrategy returns the configured strategy.
func (c *Config) ParsedStrategy() (tagsub.Strategy, error) {
	return tagsub.ParseStrategy(c.Strategy)
}

// ParsedEventFormat returns the configured event framing.
func (c *Config) ParsedEventFormat() (wire.Format, error) {
	return wire.ParseFormat(c.EventFormat)
}

// ParsedLogLevel returns the configured zerolog level.
func (c *Config) ParsedLogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}
