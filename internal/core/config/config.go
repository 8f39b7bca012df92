package config

import (
	"time"

	redisclient "github.com/pointme/resilience/internal/infra/redis"
	"github.com/pointme/resilience/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
	Queue    QueueConfig        `yaml:"queue"`
	Monitor  MonitorConfig      `yaml:"monitor"`
	Boundary BoundaryConfig     `yaml:"boundary"`
	Topics   []string           `yaml:"topics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// QueueConfig holds offline action queue settings.
type QueueConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// MonitorConfig holds connectivity monitor settings.
type MonitorConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// BoundaryConfig holds failure boundary policy.
type BoundaryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}
