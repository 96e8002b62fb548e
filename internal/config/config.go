package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// AFAD source configuration.
	AFADBaseURL    string        `envconfig:"AFAD_BASE_URL" default:"https://deprem.afad.gov.tr"`
	AFADTimeout    time.Duration `envconfig:"AFAD_TIMEOUT" default:"15s"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	LookbackWindow time.Duration `envconfig:"LOOKBACK_WINDOW" default:"24h"`
	FetchLimit     int           `envconfig:"FETCH_LIMIT" default:"500"`
	FetchOrderBy   string        `envconfig:"FETCH_ORDERBY" default:"timeasc"`
	AttachEnergy   bool          `envconfig:"ATTACH_ENERGY" default:"false"`

	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"quake-events"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AFADBaseURL == "" {
		return errors.New("AFAD_BASE_URL is required")
	}
	if c.AFADTimeout <= 0 {
		return errors.New("AFAD_TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if c.LookbackWindow <= 0 {
		return errors.New("LOOKBACK_WINDOW must be positive")
	}
	if c.FetchLimit <= 0 {
		return errors.New("FETCH_LIMIT must be positive")
	}
	switch c.FetchOrderBy {
	case "timeasc", "timedesc", "magnitude", "depth":
	default:
		return fmt.Errorf("unsupported FETCH_ORDERBY %q", c.FetchOrderBy)
	}
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
