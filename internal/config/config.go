package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	BackendSQL      = "sql"
	BackendSupabase = "supabase"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Storage   StorageConfig   `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Supabase  SupabaseConfig  `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Tracing   TracingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type StorageConfig struct {
	Backend string `mapstructure:"STORAGE_BACKEND"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DATABASE_DRIVER"`
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `mapstructure:"DATABASE_AUTO_MIGRATE"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

type SupabaseConfig struct {
	URL            string        `mapstructure:"SUPABASE_URL"`
	AnonKey        string        `mapstructure:"SUPABASE_ANON_KEY"`
	ServiceRoleKey string        `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`
	Timeout        time.Duration `mapstructure:"SUPABASE_TIMEOUT"`
	MaxRetries     int           `mapstructure:"SUPABASE_MAX_RETRIES"`
	InitialBackoff time.Duration `mapstructure:"SUPABASE_INITIAL_BACKOFF"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"AUTH_JWT_SECRET"`
	TokenTTL    time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	EmailDomain string        `mapstructure:"AUTH_EMAIL_DOMAIN"`
}

type SchedulerConfig struct {
	ReconcileCron string `mapstructure:"SCHEDULER_RECONCILE_CRON"`
	OverdueCron   string `mapstructure:"SCHEDULER_OVERDUE_CRON"`
}

type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
}

// TracingConfig points the OTLP gRPC exporter at a collector; empty disables tracing
type TracingConfig struct {
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
}

type BusinessConfig struct {
	Timezone              string `mapstructure:"BUSINESS_TIMEZONE"`
	DailyInterestPercent  string `mapstructure:"DAILY_INTEREST_PERCENT"`
	WeeklyInterestPercent string `mapstructure:"WEEKLY_INTEREST_PERCENT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "30s",
	"STORAGE_BACKEND":            BackendSQL,
	"DATABASE_DRIVER":            "postgres",
	"DATABASE_URL":               "",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"DATABASE_AUTO_MIGRATE":      false,
	"REDIS_URL":                  "",
	"CACHE_TTL":                  "60s",
	"SUPABASE_URL":               "",
	"SUPABASE_ANON_KEY":          "",
	"SUPABASE_SERVICE_ROLE_KEY":  "",
	"SUPABASE_TIMEOUT":           "10s",
	"SUPABASE_MAX_RETRIES":       3,
	"SUPABASE_INITIAL_BACKOFF":   "200ms",
	"AUTH_JWT_SECRET":            "",
	"AUTH_TOKEN_TTL":             "12h",
	"AUTH_EMAIL_DOMAIN":          "lendtrack.com",
	"SCHEDULER_RECONCILE_CRON":   "0 30 0 * * *",
	"SCHEDULER_OVERDUE_CRON":     "0 0 7 * * *",
	"LOG_LEVEL":                  "info",
	"OTLP_ENDPOINT":              "",
	"OTEL_SERVICE_NAME":          "lendtrack",
	"BUSINESS_TIMEZONE":          "Asia/Kolkata",
	"DAILY_INTEREST_PERCENT":     "1",
	"WEEKLY_INTEREST_PERCENT":    "10",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist; real env vars take precedence
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Storage.Backend {
	case BackendSQL:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=%s", BackendSQL)
		}
		if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite3" {
			return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.Database.Driver)
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when STORAGE_BACKEND=%s", BackendSupabase)
		}
		if c.Supabase.MaxRetries < 0 {
			return fmt.Errorf("SUPABASE_MAX_RETRIES must not be negative")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %s or %s, got %q", BackendSQL, BackendSupabase, c.Storage.Backend)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be greater than 0")
	}
	if strings.TrimSpace(c.Auth.EmailDomain) == "" {
		return fmt.Errorf("AUTH_EMAIL_DOMAIN is required")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA zone: %w", err)
	}

	for key, value := range map[string]string{
		"DAILY_INTEREST_PERCENT":  c.Business.DailyInterestPercent,
		"WEEKLY_INTEREST_PERCENT": c.Business.WeeklyInterestPercent,
	} {
		pct, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
		if pct.IsNegative() {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for key, spec := range map[string]string{
		"SCHEDULER_RECONCILE_CRON": c.Scheduler.ReconcileCron,
		"SCHEDULER_OVERDUE_CRON":   c.Scheduler.OverdueCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s must be a valid cron expression: %w", key, err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr is the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Location returns the business timezone; Validate guarantees it loads
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDailyInterestPercent returns the daily interest percentage as decimal
func (c *Config) GetDailyInterestPercent() decimal.Decimal {
	pct, _ := decimal.NewFromString(c.Business.DailyInterestPercent)
	return pct
}

// GetWeeklyInterestPercent returns the weekly interest percentage as decimal
func (c *Config) GetWeeklyInterestPercent() decimal.Decimal {
	pct, _ := decimal.NewFromString(c.Business.WeeklyInterestPercent)
	return pct
}

// CacheEnabled reports whether a Redis URL was configured
func (c *Config) CacheEnabled() bool {
	return c.Redis.URL != ""
}
