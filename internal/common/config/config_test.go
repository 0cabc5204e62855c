package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
server:
  id: "extract-1"
  listen: ":10090"
fetch:
  timeout: 20s
probe:
  timeout: 5s
  workers: 4
cache:
  enabled: true
  ttl: 10m
  compression: snappy
redis:
  addr: "localhost:6379"
log:
  level: info
metrics:
  enabled: true
  listen: ":10091"
  path: /metrics
  namespace: pagelens
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	m, err := NewManager(path, zap.NewNop())
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "extract-1", cfg.Server.ID)
	assert.Equal(t, ":10090", cfg.Server.Listen)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout.ToDuration())
	assert.Equal(t, 4, cfg.Probe.Workers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL.ToDuration())
	assert.Equal(t, "snappy", cfg.Cache.Compression)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  id: "extract-1"
  listen: ":10090"
`)

	m, err := NewManager(path, zap.NewNop())
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout.ToDuration())
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.ToDuration())
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout.ToDuration())
	assert.Equal(t, 1, cfg.Probe.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL.ToDuration())
	assert.Equal(t, "none", cfg.Cache.Compression)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "console", cfg.Log.Console.Format)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
server:
  id: "extract-1"
  listen: ":10090"
  unknown_field: true
`)

	_, err := NewManager(path, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing server id",
			mutate:  func(c *Config) { c.Server.ID = "" },
			wantErr: "server.id",
		},
		{
			name:    "missing listen",
			mutate:  func(c *Config) { c.Server.Listen = "" },
			wantErr: "server.listen",
		},
		{
			name:    "bad listen port",
			mutate:  func(c *Config) { c.Server.Listen = ":99999" },
			wantErr: "server.listen",
		},
		{
			name: "cache enabled without redis",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Redis.Addr = ""
			},
			wantErr: "redis.addr",
		},
		{
			name:    "bad compression",
			mutate:  func(c *Config) { c.Cache.Compression = "zstd" },
			wantErr: "cache.compression",
		},
		{
			name: "metrics on server port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Listen = c.Server.Listen
			},
			wantErr: "metrics.listen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Server.ID = "x"
			cfg.Server.Listen = ":10090"
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSSRFProtectionDefault(t *testing.T) {
	var f FetchConfig
	assert.True(t, f.SSRFProtectionEnabled())

	off := false
	f.SSRFProtection = &off
	assert.False(t, f.SSRFProtectionEnabled())
}
