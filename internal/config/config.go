// Package config loads the process configuration from POWLEDGER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/powledger/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "POWLEDGER"

// ErrInvalidConfig is returned when the environment cannot be parsed or fails
// validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Redis configures the Redis export sink. The sink is disabled when Addr is empty.
type Redis struct {
	Addr     string `envconfig:"ADDR" validate:"omitempty,hostname_port"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0" validate:"min=0"`
}

// Telemetry configures OTLP export of traces and metrics.
type Telemetry struct {
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Endpoint string `envconfig:"ENDPOINT" validate:"omitempty,hostname_port"`
	Insecure bool   `envconfig:"INSECURE" default:"false"`
}

// Config is the full process configuration.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error panic fatal"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"powledger" validate:"required"`

	Difficulty        int           `envconfig:"DIFFICULTY" default:"4" validate:"min=0,max=64"`
	MiningMaxAttempts uint64        `envconfig:"MINING_MAX_ATTEMPTS" default:"0"`
	MiningTimeout     time.Duration `envconfig:"MINING_TIMEOUT" default:"0s" validate:"min=0"`

	Telemetry Telemetry `envconfig:"TELEMETRY"`
	Redis     Redis     `envconfig:"REDIS"`

	ExportName    string `envconfig:"EXPORT_NAME" default:"powledger" validate:"required"`
	WebhookURL    string `envconfig:"WEBHOOK_URL" validate:"omitempty,url"`
	RetryAttempts uint   `envconfig:"RETRY_ATTEMPTS" default:"3" validate:"min=1"`
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}
