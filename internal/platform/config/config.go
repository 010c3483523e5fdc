// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	AdminAPIToken     string
	JWTSigningKey     string
	ApplicantTokenTTL time.Duration
	// RateLimitPerMinute caps session and code attempts per client IP.
	// Zero disables the limit.
	RateLimitPerMinute int
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Logging selects level and handler format (json|text).
type Logging struct {
	Level  string
	Format string
}

// Workflow holds the programme constants.
type Workflow struct {
	ApprovalAmount       decimal.Decimal
	ResendCooldown       time.Duration
	ActivityLogRetention int
}

// Polling holds the notifier intervals. Zero disables scheduled polling.
type Polling struct {
	ApplicantCode     time.Duration
	ApplicantApproval time.Duration
	Reviewer          time.Duration
	// ApprovalReconcile re-runs the approval rule for applicants under review.
	ApprovalReconcile time.Duration
}

// Messaging holds optional broker URLs; empty means log-only side effects.
type Messaging struct {
	NATSURL     string
	RabbitMQURL string
}

// Config is the full process configuration.
type Config struct {
	Server       Server
	Logging      Logging
	StoreBackend string
	Redis        RedisConfig
	DatabaseURL  string
	Workflow     Workflow
	Polling      Polling
	Messaging    Messaging
}

type env struct {
	Addr                  string        `mapstructure:"ASSIST_ADDR"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	LogFormat             string        `mapstructure:"LOG_FORMAT"`
	StoreBackend          string        `mapstructure:"STORE_BACKEND"`
	RedisURL              string        `mapstructure:"REDIS_URL"`
	RedisPoolSize         int           `mapstructure:"REDIS_POOL_SIZE"`
	RedisMinIdleConns     int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	RedisDialTimeout      time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	RedisReadTimeout      time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	RedisWriteTimeout     time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	AdminAPIToken         string        `mapstructure:"ADMIN_API_TOKEN"`
	JWTSigningKey         string        `mapstructure:"JWT_SIGNING_KEY"`
	ApplicantTokenTTL     time.Duration `mapstructure:"APPLICANT_TOKEN_TTL"`
	RateLimitPerMinute    int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	ApplicantPollInterval time.Duration `mapstructure:"APPLICANT_POLL_INTERVAL"`
	ApprovalPollInterval  time.Duration `mapstructure:"APPROVAL_POLL_INTERVAL"`
	ReviewerPollInterval  time.Duration `mapstructure:"REVIEWER_POLL_INTERVAL"`
	ReconcileInterval     time.Duration `mapstructure:"APPROVAL_RECONCILE_INTERVAL"`
	ResendCooldown        time.Duration `mapstructure:"RESEND_COOLDOWN"`
	ApprovalAmount        string        `mapstructure:"APPROVAL_AMOUNT"`
	ActivityLogRetention  int           `mapstructure:"ACTIVITY_LOG_RETENTION"`
	NATSURL               string        `mapstructure:"NATS_URL"`
	RabbitMQURL           string        `mapstructure:"RABBITMQ_URL"`
}

var defaults = map[string]any{
	"ASSIST_ADDR":                 ":8080",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"STORE_BACKEND":               BackendMemory,
	"REDIS_URL":                   "",
	"REDIS_POOL_SIZE":             10,
	"REDIS_MIN_IDLE_CONNS":        2,
	"REDIS_DIAL_TIMEOUT":          "5s",
	"REDIS_READ_TIMEOUT":          "3s",
	"REDIS_WRITE_TIMEOUT":         "3s",
	"DATABASE_URL":                "",
	"ADMIN_API_TOKEN":             "",
	"JWT_SIGNING_KEY":             "dev-secret-key-change-in-production",
	"APPLICANT_TOKEN_TTL":         "24h",
	"RATE_LIMIT_PER_MINUTE":       10,
	"APPLICANT_POLL_INTERVAL":     "2s",
	"APPROVAL_POLL_INTERVAL":      "3s",
	"REVIEWER_POLL_INTERVAL":      "0s",
	"APPROVAL_RECONCILE_INTERVAL": "1m",
	"RESEND_COOLDOWN":             "60s",
	"APPROVAL_AMOUNT":             "1000",
	"ACTIVITY_LOG_RETENTION":      100,
	"NATS_URL":                    "",
	"RABBITMQ_URL":                "",
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper builds a Config from v after applying defaults and env bindings.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	var e env
	if err := v.Unmarshal(&e); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return e.build()
}

func (e env) build() (*Config, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(e.ApprovalAmount))
	if err != nil {
		return nil, fmt.Errorf("APPROVAL_AMOUNT: %w", err)
	}
	if !amount.IsPositive() {
		return nil, errors.New("APPROVAL_AMOUNT must be positive")
	}

	backend := strings.ToLower(strings.TrimSpace(e.StoreBackend))
	switch backend {
	case BackendMemory:
	case BackendRedis:
		if e.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for the redis store backend")
		}
	case BackendPostgres:
		if e.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND %q is not one of memory, redis, postgres", e.StoreBackend)
	}

	if e.RateLimitPerMinute < 0 {
		return nil, errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if e.ResendCooldown < 0 || e.ApplicantPollInterval < 0 || e.ApprovalPollInterval < 0 || e.ReviewerPollInterval < 0 || e.ReconcileInterval < 0 {
		return nil, errors.New("durations must not be negative")
	}

	return &Config{
		Server: Server{
			Addr:               e.Addr,
			AdminAPIToken:      e.AdminAPIToken,
			JWTSigningKey:      e.JWTSigningKey,
			ApplicantTokenTTL:  e.ApplicantTokenTTL,
			RateLimitPerMinute: e.RateLimitPerMinute,
		},
		Logging:      Logging{Level: e.LogLevel, Format: e.LogFormat},
		StoreBackend: backend,
		Redis: RedisConfig{
			URL:          e.RedisURL,
			PoolSize:     e.RedisPoolSize,
			MinIdleConns: e.RedisMinIdleConns,
			DialTimeout:  e.RedisDialTimeout,
			ReadTimeout:  e.RedisReadTimeout,
			WriteTimeout: e.RedisWriteTimeout,
		},
		DatabaseURL: e.DatabaseURL,
		Workflow: Workflow{
			ApprovalAmount:       amount,
			ResendCooldown:       e.ResendCooldown,
			ActivityLogRetention: e.ActivityLogRetention,
		},
		Polling: Polling{
			ApplicantCode:     e.ApplicantPollInterval,
			ApplicantApproval: e.ApprovalPollInterval,
			Reviewer:          e.ReviewerPollInterval,
			ApprovalReconcile: e.ReconcileInterval,
		},
		Messaging: Messaging{NATSURL: e.NATSURL, RabbitMQURL: e.RabbitMQURL},
	}, nil
}
