package config

import (
	"fmt"
	"net"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the comparison engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Datasource connection management configuration
	Datasource DatasourceConfig `yaml:"datasource"`

	// Diff computation configuration
	Diff DiffConfig `yaml:"diff"`
}

// DatasourceConfig holds datasource connection management settings.
type DatasourceConfig struct {
	// ConnectionTTLMinutes is how long idle datasource connections are kept alive.
	ConnectionTTLMinutes int `yaml:"connection_ttl_minutes" env:"DATASOURCE_CONNECTION_TTL_MINUTES" env-default:"5"`
	// PoolMaxConns is the maximum number of connections per datasource pool.
	PoolMaxConns int32 `yaml:"pool_max_conns" env:"DATASOURCE_POOL_MAX_CONNS" env-default:"10"`
	// PoolMinConns is the minimum number of connections per datasource pool.
	PoolMinConns int32 `yaml:"pool_min_conns" env:"DATASOURCE_POOL_MIN_CONNS" env-default:"1"`
}

// DiffConfig holds settings for metric diff computation.
type DiffConfig struct {
	// PercentPrecision is the number of decimal places in percent diff values.
	PercentPrecision int `yaml:"percent_precision" env:"DIFF_PERCENT_PRECISION" env-default:"5"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Diff.PercentPrecision < 0 {
		return fmt.Errorf("diff.percent_precision must be >= 0, got %d", c.Diff.PercentPrecision)
	}
	if c.Datasource.PoolMinConns > c.Datasource.PoolMaxConns {
		return fmt.Errorf("datasource.pool_min_conns (%d) exceeds pool_max_conns (%d)",
			c.Datasource.PoolMinConns, c.Datasource.PoolMaxConns)
	}
	return nil
}

// ListenAddr returns the host:port address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}
