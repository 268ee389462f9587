package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
market:
  symbol: BTCUSDT
  fine_interval: 5m
  coarse_interval: 15m
  candle_limit: 300
  poll_interval: 5m
datasource:
  type: rest
  binance_base_url: https://api.binance.com
  request_timeout: 10s
model:
  service_url: http://localhost:8501
  metadata_path: /models/metadata.json
  timeout: 3s
  retry_attempts: 2
store:
  backend: file
  snapshot_path: /data/latest_state.json
  subscribers_path: /data/subscribers.json
telegram:
  enabled: false
logging:
  level: info
  format: json
  output: stdout
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "BTCUSDT", cfg.Market.Symbol)
	assert.Equal(t, 5*time.Minute, cfg.Market.PollInterval)
	assert.Equal(t, "rest", cfg.DataSource.Type)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 2, cfg.Model.RetryAttempts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }},
		{"missing symbol", func(c *Config) { c.Market.Symbol = "" }},
		{"bad datasource", func(c *Config) { c.DataSource.Type = "kafka" }},
		{"bad store backend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"zero candle limit", func(c *Config) { c.Market.CandleLimit = 0 }},
		{"missing model url", func(c *Config) { c.Model.ServiceURL = "" }},
		{"telegram enabled without token", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = ""
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")
	t.Setenv("SYMBOL", "ETHUSDT")
	t.Setenv("SNAPSHOT_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Telegram.BotToken)
	assert.Equal(t, "ETHUSDT", cfg.Market.Symbol)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}
