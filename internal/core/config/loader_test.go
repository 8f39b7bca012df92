package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_EnvSubstitution(t *testing.T) {
	// Setup env var
	os.Setenv("TEST_REDIS_URL", "redis://localhost:6380")
	defer os.Unsetenv("TEST_REDIS_URL")

	// Create temp config file
	configContent := `
redis:
  url: ${TEST_REDIS_URL}
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	// Load config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Redis.URL != "redis://localhost:6380" {
		t.Errorf("Expected URL redis://localhost:6380, got %s", cfg.Redis.URL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Queue.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", cfg.Queue.MaxAttempts)
	}
	if cfg.Boundary.MaxRetries != 3 {
		t.Errorf("Expected default max retries 3, got %d", cfg.Boundary.MaxRetries)
	}
	if cfg.Boundary.RetryDelay != time.Second {
		t.Errorf("Expected default retry delay 1s, got %s", cfg.Boundary.RetryDelay)
	}
	if len(cfg.Topics) != 2 {
		t.Errorf("Expected default topics, got %v", cfg.Topics)
	}
}
