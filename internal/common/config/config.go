// Package config loads and validates the extract service configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/configtypes"
	"github.com/pagelens/engine/internal/common/yamlutil"
	"github.com/pagelens/engine/pkg/types"
)

// Type aliases so callers only import this package for config types.
type (
	RedisConfig   = configtypes.RedisConfig
	LogConfig     = configtypes.LogConfig
	MetricsConfig = configtypes.MetricsConfig
)

// Config is the extract service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Probe   ProbeConfig   `yaml:"probe"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	ID      string         `yaml:"id"`
	Listen  string         `yaml:"listen"`
	Timeout types.Duration `yaml:"timeout"`
}

// FetchConfig configures outbound page and image downloads.
type FetchConfig struct {
	Timeout         types.Duration `yaml:"timeout"`
	UserAgent       string         `yaml:"user_agent"`
	SSRFProtection  *bool          `yaml:"ssrf_protection,omitempty"`
	MaxIdleConns    int            `yaml:"max_idle_conns"`
	MaxConnsPerHost int            `yaml:"max_conns_per_host"`
}

// ProbeConfig configures image verification.
type ProbeConfig struct {
	Timeout types.Duration `yaml:"timeout"`
	Workers int            `yaml:"workers"`
}

// CacheConfig configures the Redis result cache.
type CacheConfig struct {
	Enabled     bool           `yaml:"enabled"`
	TTL         types.Duration `yaml:"ttl"`
	Compression string         `yaml:"compression,omitempty"` // none, snappy, lz4
}

const (
	defaultServerTimeout = 60 * time.Second
	defaultFetchTimeout  = 30 * time.Second
	defaultProbeTimeout  = 10 * time.Second
	defaultCacheTTL      = 15 * time.Minute
)

// Manager loads the configuration file and hands out the parsed result.
type Manager struct {
	config     *Config
	configPath string
	logger     *zap.Logger
}

// NewManager reads and validates the config file at configPath.
func NewManager(configPath string, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
		logger:     logger,
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the configuration from disk, applying defaults before
// validation. Unknown YAML fields are rejected.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.config = &cfg
	return nil
}

// GetConfig returns the loaded configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = types.Duration(defaultServerTimeout)
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = types.Duration(defaultFetchTimeout)
	}
	if cfg.Probe.Timeout <= 0 {
		cfg.Probe.Timeout = types.Duration(defaultProbeTimeout)
	}
	if cfg.Probe.Workers <= 0 {
		cfg.Probe.Workers = 1
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = types.Duration(defaultCacheTTL)
	}
	if cfg.Cache.Compression == "" {
		cfg.Cache.Compression = types.CompressionNone
	}

	// If both log outputs are disabled (zero values), enable console.
	if !cfg.Log.Console.Enabled && !cfg.Log.File.Enabled {
		cfg.Log.Console.Enabled = true
	}
	if cfg.Log.Console.Format == "" {
		cfg.Log.Console.Format = configtypes.LogFormatConsole
	}
	if cfg.Log.File.Format == "" {
		cfg.Log.File.Format = configtypes.LogFormatText
	}
}

// Validate checks configuration validity.
func (cfg *Config) Validate() error {
	if cfg.Server.ID == "" {
		return fmt.Errorf("server.id is required")
	}

	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	} else if err := configtypes.ValidateListenAddress(cfg.Server.Listen); err != nil {
		return fmt.Errorf("invalid server.listen: %w", err)
	}

	if cfg.Cache.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when cache is enabled")
	}

	switch cfg.Cache.Compression {
	case types.CompressionNone, types.CompressionSnappy, types.CompressionLZ4:
	default:
		return fmt.Errorf("cache.compression must be one of none, snappy, lz4")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return fmt.Errorf("metrics.listen is required when metrics are enabled")
		}
		if err := configtypes.ValidateListenAddress(cfg.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics.listen: %w", err)
		}
		if cfg.Metrics.Listen == cfg.Server.Listen {
			return fmt.Errorf("metrics.listen must differ from server.listen")
		}
		if cfg.Metrics.Path == "" {
			cfg.Metrics.Path = "/metrics"
		}
	}

	return nil
}

// SSRFProtectionEnabled reports whether outbound fetches refuse private
// IP hosts. Defaults to on when unset.
func (f *FetchConfig) SSRFProtectionEnabled() bool {
	return f.SSRFProtection == nil || *f.SSRFProtection
}

// GetConfigPath resolves the config path to an absolute path and verifies
// the file exists.
func GetConfigPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("config path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("config file does not exist: %s", absPath)
	}

	return absPath, nil
}
