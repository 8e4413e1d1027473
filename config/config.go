package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/tbekken/ochat/errors"
	"gopkg.in/yaml.v3"
)

// Defaults applied before any config file is read.
const (
	DefaultPort           = 54321
	DefaultModel          = "opencode/kimi-k2.5-free"
	DefaultTimeoutSeconds = 300
)

type Server struct {
	URL  string `yaml:"url"`
	Port int    `yaml:"port"`
}

type Config struct {
	Server                Server `yaml:"server"`
	Model                 string `yaml:"model"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	LogFile               string `yaml:"log_file"`
}

// LoadConfig loads configuration from the user's home directory and the current
// working directory, with the latter taking precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:                Server{Port: DefaultPort},
		Model:                 DefaultModel,
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
	}

	// Load user-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".ochat", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Load project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".ochat", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Note: Unmarshal will overwrite fields present in the YAML. This provides
	// a simple merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

// RequestTimeout returns the per-request timeout as a duration. Zero or
// negative values fall back to the default.
func (c *Config) RequestTimeout() time.Duration {
	secs := c.RequestTimeoutSeconds
	if secs <= 0 {
		secs = DefaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}
