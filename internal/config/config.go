package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// Config holds all configuration for arbitrage-scanner-service
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Scanner ScannerConfig `mapstructure:"scanner"`
	OddsAPI OddsAPIConfig `mapstructure:"odds_api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	Topic            string   `mapstructure:"topic"`             // Topic to consume odds record batches from
	GroupID          string   `mapstructure:"group_id"`
	OpportunityTopic string   `mapstructure:"opportunity_topic"` // Topic detected opportunities are published to
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ScannerConfig holds arbitrage scan parameters
type ScannerConfig struct {
	DefaultStake     float64 `mapstructure:"default_stake"`      // Used when a batch carries no stake
	MinProfitPercent float64 `mapstructure:"min_profit_percent"` // 0 keeps every strictly positive profit
	Workers          int     `mapstructure:"workers"`
}

// OddsAPIConfig holds the odds provider polling configuration
type OddsAPIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Sport        string        `mapstructure:"sport"`
	Regions      string        `mapstructure:"regions"`
	Markets      string        `mapstructure:"markets"`
	PollSchedule string        `mapstructure:"poll_schedule"` // Cron expression with seconds field
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "odds_records")
	v.SetDefault("kafka.group_id", "arbitrage-scanner")
	v.SetDefault("kafka.opportunity_topic", "arbitrage_opportunities")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("scanner.default_stake", 100.0)
	v.SetDefault("scanner.min_profit_percent", 0.0)
	v.SetDefault("scanner.workers", 4)

	v.SetDefault("odds_api.enabled", false)
	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.sport", "upcoming")
	v.SetDefault("odds_api.regions", "uk")
	v.SetDefault("odds_api.markets", "h2h,totals")
	v.SetDefault("odds_api.poll_schedule", "0 */5 * * * *")
	v.SetDefault("odds_api.timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ARB_SCANNER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The odds provider key is also accepted under its conventional name
	if err := v.BindEnv("odds_api.api_key", "ARB_SCANNER_ODDS_API_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values the service cannot run with
func (c *Config) Validate() error {
	if c.Scanner.DefaultStake <= 0 {
		return fmt.Errorf("invalid scanner.default_stake %v: must be greater than zero", c.Scanner.DefaultStake)
	}
	if c.Scanner.MinProfitPercent < 0 {
		return fmt.Errorf("invalid scanner.min_profit_percent %v: must not be negative", c.Scanner.MinProfitPercent)
	}
	if c.OddsAPI.Enabled && c.OddsAPI.APIKey == "" {
		return fmt.Errorf("odds_api.enabled requires odds_api.api_key (or API_KEY)")
	}
	return nil
}

// ToScanParams converts config to scan parameters
func (c *ScannerConfig) ToScanParams() models.ScanParams {
	return models.ScanParams{
		MinProfitPercent: decimal.NewFromFloat(c.MinProfitPercent),
		Workers:          c.Workers,
	}
}

// DefaultStakeDecimal returns the default stake as a decimal
func (c *ScannerConfig) DefaultStakeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultStake)
}
