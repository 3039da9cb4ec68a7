// Package daemon manages the KeepWell daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all daemon configuration. Values layer in order:
// defaults, then config.toml, then environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server" envconfig:""`
	Storage   StorageConfig   `toml:"storage" envconfig:""`
	Cache     CacheConfig     `toml:"cache" envconfig:""`
	Logging   LoggingConfig   `toml:"logging" envconfig:""`
	Telemetry TelemetryConfig `toml:"telemetry" envconfig:""`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host string `toml:"host" envconfig:"KEEPWELL_HOST"`
	Port int    `toml:"port" envconfig:"KEEPWELL_PORT"`
}

// StorageConfig controls where the SQLite state lives.
type StorageConfig struct {
	Dir string `toml:"dir" envconfig:"KEEPWELL_STORAGE_DIR"`
}

// CacheConfig controls the in-process status cache.
type CacheConfig struct {
	TTL           string `toml:"ttl" envconfig:"KEEPWELL_CACHE_TTL"`
	SweepInterval string `toml:"sweep_interval" envconfig:"KEEPWELL_CACHE_SWEEP_INTERVAL"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" envconfig:"KEEPWELL_LOG_LEVEL"`
	Format string `toml:"format" envconfig:"KEEPWELL_LOG_FORMAT"`
}

// TelemetryConfig controls the Prometheus /metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" envconfig:"KEEPWELL_PROMETHEUS"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := keepwellHome()
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: StorageConfig{
			Dir: filepath.Join(homeDir, "data"),
		},
		Cache: CacheConfig{
			TTL:           "5m",
			SweepInterval: "1m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig layers configuration: defaults, then
// ~/.keepwell/config.toml, then a .env file, then the environment.
// Fields without `default` tags keep earlier layers intact when the
// environment is silent.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(keepwellHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; variables already exported win over it.
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("apply environment: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.keepwell/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(keepwellHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// keepwellHome returns the KeepWell data directory.
func keepwellHome() string {
	if env := os.Getenv("KEEPWELL_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".keepwell")
}

// KeepwellHome is exported for use by other packages.
func KeepwellHome() string {
	return keepwellHome()
}
