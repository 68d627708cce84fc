package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.2"

type Config struct {
	Database    DatabaseConfig
	Engine      EngineConfig
	SMTP        SMTPConfig
	Environment string
	LogLevel    string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EngineConfig holds the execution engine tunables
type EngineConfig struct {
	// SchedulerInterval is the cadence of the polling tick
	SchedulerInterval time.Duration
	// BatchSize bounds how many due executions one tick claims
	BatchSize int
	// WorkerConcurrency bounds concurrent step dispatches
	WorkerConcurrency int

	// MaxAttempts is the retry bound before failed_permanently
	MaxAttempts int
	// RetryBackoff is the escalating delay sequence indexed by attempt;
	// RetryBackoffFallback applies beyond its length
	RetryBackoff         []time.Duration
	RetryBackoffFallback time.Duration

	// RateLimitPerMinute caps step dispatches per workspace per minute;
	// RateLimitDeferral is how long a throttled execution is pushed back
	RateLimitPerMinute int
	RateLimitDeferral  time.Duration

	// StaleProcessingTimeout before a processing execution is presumed crashed
	StaleProcessingTimeout time.Duration

	// Retention windows for the terminal-execution reaper
	CompletedRetention time.Duration
	FailedRetention    time.Duration

	// DiscoveryBatchSize bounds contacts enrolled per automation per tick
	DiscoveryBatchSize int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dripkit")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("ENGINE_SCHEDULER_INTERVAL", "60s")
	v.SetDefault("ENGINE_BATCH_SIZE", 500)
	v.SetDefault("ENGINE_WORKER_CONCURRENCY", 16)
	v.SetDefault("ENGINE_MAX_ATTEMPTS", 3)
	v.SetDefault("ENGINE_RETRY_BACKOFF", "30s,5m,30m")
	v.SetDefault("ENGINE_RETRY_BACKOFF_FALLBACK", "1h")
	v.SetDefault("ENGINE_RATE_LIMIT_PER_MINUTE", 100)
	v.SetDefault("ENGINE_RATE_LIMIT_DEFERRAL", "1m")
	v.SetDefault("ENGINE_STALE_PROCESSING_TIMEOUT", "1h")
	v.SetDefault("ENGINE_COMPLETED_RETENTION", "2160h") // 90 days
	v.SetDefault("ENGINE_FAILED_RETENTION", "720h")     // 30 days
	v.SetDefault("ENGINE_DISCOVERY_BATCH_SIZE", 200)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Dripkit")

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	backoff, err := parseBackoffSequence(v.GetString("ENGINE_RETRY_BACKOFF"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_RETRY_BACKOFF: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Engine: EngineConfig{
			SchedulerInterval:      v.GetDuration("ENGINE_SCHEDULER_INTERVAL"),
			BatchSize:              v.GetInt("ENGINE_BATCH_SIZE"),
			WorkerConcurrency:      v.GetInt("ENGINE_WORKER_CONCURRENCY"),
			MaxAttempts:            v.GetInt("ENGINE_MAX_ATTEMPTS"),
			RetryBackoff:           backoff,
			RetryBackoffFallback:   v.GetDuration("ENGINE_RETRY_BACKOFF_FALLBACK"),
			RateLimitPerMinute:     v.GetInt("ENGINE_RATE_LIMIT_PER_MINUTE"),
			RateLimitDeferral:      v.GetDuration("ENGINE_RATE_LIMIT_DEFERRAL"),
			StaleProcessingTimeout: v.GetDuration("ENGINE_STALE_PROCESSING_TIMEOUT"),
			CompletedRetention:     v.GetDuration("ENGINE_COMPLETED_RETENTION"),
			FailedRetention:        v.GetDuration("ENGINE_FAILED_RETENTION"),
			DiscoveryBatchSize:     v.GetInt("ENGINE_DISCOVERY_BATCH_SIZE"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the engine tunables for nonsensical values
func (c *EngineConfig) Validate() error {
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("ENGINE_SCHEDULER_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("ENGINE_BATCH_SIZE must be positive")
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("ENGINE_WORKER_CONCURRENCY must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("ENGINE_MAX_ATTEMPTS must be positive")
	}
	if len(c.RetryBackoff) == 0 {
		return fmt.Errorf("ENGINE_RETRY_BACKOFF cannot be empty")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("ENGINE_RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GetConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func parseBackoffSequence(raw string) ([]time.Duration, error) {
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("bad duration %q: %w", p, err)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	return out, nil
}
