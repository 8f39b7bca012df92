package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Queue.MaxAttempts == 0 {
		cfg.Queue.MaxAttempts = 5
	}
	if cfg.Monitor.ProbeInterval == 0 {
		cfg.Monitor.ProbeInterval = 10 * time.Second
	}
	if cfg.Boundary.MaxRetries == 0 {
		cfg.Boundary.MaxRetries = 3
	}
	if cfg.Boundary.RetryDelay == 0 {
		cfg.Boundary.RetryDelay = time.Second
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = []string{"bookings", "services"}
	}
}
