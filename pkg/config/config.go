package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Market struct {
		Symbol         string        `yaml:"symbol"`
		FineInterval   string        `yaml:"fine_interval"`
		CoarseInterval string        `yaml:"coarse_interval"`
		CandleLimit    int           `yaml:"candle_limit"`
		PollInterval   time.Duration `yaml:"poll_interval"`
	} `yaml:"market"`
	DataSource struct {
		Type           string        `yaml:"type"` // rest | stream | clickhouse
		BinanceBaseURL string        `yaml:"binance_base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		WindowCapacity int           `yaml:"window_capacity"`
	} `yaml:"datasource"`
	Model struct {
		ServiceURL    string        `yaml:"service_url"`
		MetadataPath  string        `yaml:"metadata_path"`
		Timeout       time.Duration `yaml:"timeout"`
		RetryAttempts int           `yaml:"retry_attempts"`
	} `yaml:"model"`
	Store struct {
		Backend         string `yaml:"backend"` // file | redis
		SnapshotPath    string `yaml:"snapshot_path"`
		SubscribersPath string `yaml:"subscribers_path"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Telegram struct {
		Enabled     bool          `yaml:"enabled"`
		BotToken    string        `yaml:"bot_token"`
		APIBaseURL  string        `yaml:"api_base_url"`
		PollTimeout time.Duration `yaml:"poll_timeout"`
		SendTimeout time.Duration `yaml:"send_timeout"`
	} `yaml:"telegram"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
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

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Market.Symbol = v
	}
	if v := os.Getenv("SNAPSHOT_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if c.Market.CandleLimit <= 0 {
		return fmt.Errorf("market.candle_limit must be positive")
	}
	if c.Market.PollInterval <= 0 {
		return fmt.Errorf("market.poll_interval must be positive")
	}
	switch c.DataSource.Type {
	case "rest", "stream", "clickhouse":
	case "":
		return fmt.Errorf("datasource.type is required")
	default:
		return fmt.Errorf("datasource.type must be 'rest', 'stream' or 'clickhouse', got '%s'", c.DataSource.Type)
	}
	switch c.Store.Backend {
	case "file", "redis":
	case "":
		return fmt.Errorf("store.backend is required")
	default:
		return fmt.Errorf("store.backend must be 'file' or 'redis', got '%s'", c.Store.Backend)
	}
	if c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required")
	}
	if c.Model.MetadataPath == "" {
		return fmt.Errorf("model.metadata_path is required")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	return nil
}
