package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded from YAML with optional
// environment overrides.
type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Upstream struct {
		BaseURL    string        `yaml:"base_url"`
		PairID     string        `yaml:"pair_id"`
		VsCurrency string        `yaml:"vs_currency"`
		Timeout    time.Duration `yaml:"timeout"`
		UserAgent  string        `yaml:"user_agent"`
	} `yaml:"upstream"`
	Chart struct {
		ServeStaleOnError bool `yaml:"serve_stale_on_error"`
	} `yaml:"chart"`
	Snapshot struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"snapshot"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("PAIR_ID"); v != "" {
		c.Upstream.PairID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Snapshot.Host = v
		c.Snapshot.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Snapshot.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Upstream.VsCurrency == "" {
		c.Upstream.VsCurrency = "usd"
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 15 * time.Second
	}
	if c.Snapshot.Port == 0 {
		c.Snapshot.Port = 6379
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = "chartfeed"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Upstream.PairID == "" {
		return fmt.Errorf("upstream.pair_id is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Snapshot.Enabled && c.Snapshot.Host == "" {
		return fmt.Errorf("snapshot.host is required when snapshot cache is enabled")
	}
	return nil
}
