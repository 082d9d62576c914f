package config

import (
	"fmt"
	"os"
	"strconv"
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
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Universe []string `yaml:"universe"`
	Models   struct {
		Threshold struct {
			Enabled    bool    `yaml:"enabled"`
			Period     int     `yaml:"period"`
			Oversold   float64 `yaml:"oversold"`
			Overbought float64 `yaml:"overbought"`
		} `yaml:"threshold"`
		Crossover struct {
			Enabled    bool `yaml:"enabled"`
			FastPeriod int  `yaml:"fast_period"`
			SlowPeriod int  `yaml:"slow_period"`
		} `yaml:"crossover"`
		Composite struct {
			Quorum int `yaml:"quorum"`
		} `yaml:"composite"`
	} `yaml:"models"`
	Cycle struct {
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"cycle"`
	Engine struct {
		Mode    string        `yaml:"mode"` // local or http
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"engine"`
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
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled  bool          `yaml:"enabled"`
		TTL      time.Duration `yaml:"ttl"`
		MaxItems int           `yaml:"max_items"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		BatchSize      int           `yaml:"batch_size"`
		BatchTimeout   time.Duration `yaml:"batch_timeout"`
	} `yaml:"stream"`
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
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}
	if v := os.Getenv("ENGINE_MODE"); v != "" {
		c.Engine.Mode = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse SERVER_PORT: %w", err)
		}
		c.Server.Port = p
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Engine.Mode == "" {
		c.Engine.Mode = "local"
	}
	if c.Models.Threshold.Period == 0 {
		c.Models.Threshold.Period = 14
	}
	if c.Models.Threshold.Oversold == 0 && c.Models.Threshold.Overbought == 0 {
		c.Models.Threshold.Oversold = 30
		c.Models.Threshold.Overbought = 70
	}
	if c.Models.Crossover.FastPeriod == 0 {
		c.Models.Crossover.FastPeriod = 10
	}
	if c.Models.Crossover.SlowPeriod == 0 {
		c.Models.Crossover.SlowPeriod = 30
	}
	if c.Models.Composite.Quorum == 0 {
		c.Models.Composite.Quorum = 2
	}
	if c.Cycle.Interval == 0 {
		c.Cycle.Interval = time.Minute
	}
	if c.Cycle.Timeout == 0 {
		c.Cycle.Timeout = 30 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe cannot be empty")
	}
	if c.Models.Threshold.Period <= 0 {
		return fmt.Errorf("models.threshold.period must be positive, got %d", c.Models.Threshold.Period)
	}
	if c.Models.Threshold.Oversold >= c.Models.Threshold.Overbought {
		return fmt.Errorf("models.threshold.oversold (%v) must be below overbought (%v)",
			c.Models.Threshold.Oversold, c.Models.Threshold.Overbought)
	}
	if c.Models.Crossover.FastPeriod <= 0 || c.Models.Crossover.SlowPeriod <= 0 {
		return fmt.Errorf("models.crossover periods must be positive")
	}
	if c.Models.Crossover.FastPeriod >= c.Models.Crossover.SlowPeriod {
		return fmt.Errorf("models.crossover.fast_period (%d) must be below slow_period (%d)",
			c.Models.Crossover.FastPeriod, c.Models.Crossover.SlowPeriod)
	}
	if c.Models.Composite.Quorum < 2 {
		return fmt.Errorf("models.composite.quorum must be at least 2, got %d", c.Models.Composite.Quorum)
	}
	if c.Engine.Mode != "local" && c.Engine.Mode != "http" {
		return fmt.Errorf("engine.mode must be 'local' or 'http', got '%s'", c.Engine.Mode)
	}
	if c.Engine.Mode == "http" && c.Engine.BaseURL == "" {
		return fmt.Errorf("engine.base_url is required when engine.mode is 'http'")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Stream.Enabled && c.Stream.APIKey == "" {
		return fmt.Errorf("stream.api_key is required when stream is enabled")
	}
	return nil
}
