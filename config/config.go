package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcelsud/scalable-webhook/policy"
	"github.com/marcelsud/scalable-webhook/record/postgres"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/spf13/viper"
)

/* Config is read from the environment, optionally seeded by a .env file */

type Config struct {
	Port        string `mapstructure:"PORT"`
	MetricsPort string `mapstructure:"METRICS_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	QueueBackend      string `mapstructure:"QUEUE_BACKEND"`
	QueueName         string `mapstructure:"QUEUE_NAME"`
	DLQName           string `mapstructure:"DLQ_NAME"`
	VisibilityTimeout string `mapstructure:"VISIBILITY_TIMEOUT"`
	MaxReceiveCount   string `mapstructure:"MAX_RECEIVE_COUNT"`
	RedrivePolicy     string `mapstructure:"REDRIVE_POLICY"`
	PolicyFile        string `mapstructure:"POLICY_FILE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SinkDriver                 string `mapstructure:"SINK_DRIVER"`
	PGUser                     string `mapstructure:"PGUSER"`
	PGHost                     string `mapstructure:"PGHOST"`
	PGPassword                 string `mapstructure:"PGPASSWORD"`
	PGDatabase                 string `mapstructure:"PGDATABASE"`
	PGPort                     int    `mapstructure:"PGPORT"`
	PGSSLMode                  string `mapstructure:"PGSSLMODE"`
	PostgresMaxOpenConns       int    `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	PostgresMaxIdleConns       int    `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	PostgresConnMaxLifeMinutes int    `mapstructure:"POSTGRES_CONN_MAX_LIFE_MINUTES"`
	SQLitePath                 string `mapstructure:"SQLITE_PATH"`

	ConsumerParallelism  int           `mapstructure:"CONSUMER_PARALLELISM"`
	ConsumerBatchSize    int           `mapstructure:"CONSUMER_BATCH_SIZE"`
	ConsumerPollInterval time.Duration `mapstructure:"CONSUMER_POLL_INTERVAL"`
	ConnectionRetryDelay time.Duration `mapstructure:"CONNECTION_RETRY_DELAY"`

	MaxBodyBytes int64 `mapstructure:"MAX_BODY_BYTES"`
}

var defaults = map[string]any{
	"PORT": "8080",
	// worker only, the api serves /metrics on PORT
	"METRICS_PORT": "9091",
	"LOG_LEVEL":    "info",

	"QUEUE_BACKEND": "redis",
	"QUEUE_NAME":    "webhook",
	"DLQ_NAME":      "webhook-dlq",
	// empty means "not set", the policy defaults apply
	"VISIBILITY_TIMEOUT": "",
	"MAX_RECEIVE_COUNT":  "",
	"REDRIVE_POLICY":     "",
	"POLICY_FILE":        "",

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"SINK_DRIVER":                    "postgres",
	"PGUSER":                         "postgres",
	"PGHOST":                         "localhost",
	"PGPASSWORD":                     "",
	"PGDATABASE":                     "webhooks",
	"PGPORT":                         5432,
	"PGSSLMODE":                      "disable",
	"POSTGRES_MAX_OPEN_CONNS":        25,
	"POSTGRES_MAX_IDLE_CONNS":        5,
	"POSTGRES_CONN_MAX_LIFE_MINUTES": 5,
	"SQLITE_PATH":                    "data/webhooks.sqlite",

	"CONSUMER_PARALLELISM":   4,
	"CONSUMER_BATCH_SIZE":    10,
	"CONSUMER_POLL_INTERVAL": "1s",
	"CONNECTION_RETRY_DELAY": "0s",

	"MAX_BODY_BYTES": 256 * 1024,
}

// GetConfig loads .env when present and reads every key from the environment
func GetConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	err := v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the keys that have a closed set of values
func (c *Config) Validate() error {
	switch c.QueueBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("QUEUE_BACKEND must be redis or memory (got %q)", c.QueueBackend)
	}
	switch c.SinkDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("SINK_DRIVER must be postgres or sqlite (got %q)", c.SinkDriver)
	}
	if c.QueueName == "" {
		return fmt.Errorf("QUEUE_NAME cannot be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive (got %d)", c.MaxBodyBytes)
	}
	return nil
}

/* ResolvePolicy builds the queue policy once, before traffic is served
 * Precedence, lowest first: defaults, POLICY_FILE, REDRIVE_POLICY, VISIBILITY_TIMEOUT and MAX_RECEIVE_COUNT
 */
func (c *Config) ResolvePolicy() (webhook.Policy, error) {
	p := webhook.DefaultPolicy(c.DLQName)

	var err error
	if c.PolicyFile != "" {
		p, err = policy.Load(c.PolicyFile, p)
		if err != nil {
			return webhook.Policy{}, err
		}
	}
	if c.RedrivePolicy != "" {
		p, err = policy.ParseRedrivePolicy(c.RedrivePolicy, p)
		if err != nil {
			return webhook.Policy{}, err
		}
	}
	if c.VisibilityTimeout != "" {
		p.VisibilityTimeout, err = parseSeconds(c.VisibilityTimeout)
		if err != nil {
			return webhook.Policy{}, fmt.Errorf("invalid VISIBILITY_TIMEOUT: %w", err)
		}
	}
	if c.MaxReceiveCount != "" {
		p.MaxReceiveCount, err = strconv.Atoi(strings.TrimSpace(c.MaxReceiveCount))
		if err != nil {
			return webhook.Policy{}, fmt.Errorf("invalid MAX_RECEIVE_COUNT: %w", err)
		}
	}

	if err := p.Validate(); err != nil {
		return webhook.Policy{}, fmt.Errorf("validating policy: %w", err)
	}
	return p, nil
}

// parseSeconds accepts a Go duration or a bare number of seconds
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// PostgresParams returns the sink connection parameters
func (c *Config) PostgresParams() postgres.Params {
	return postgres.Params{
		User:     c.PGUser,
		Host:     c.PGHost,
		Password: c.PGPassword,
		Database: c.PGDatabase,
		Port:     c.PGPort,
		SSLMode:  c.PGSSLMode,
	}
}
