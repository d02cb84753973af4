package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://lendtrack@localhost/lendtrack?sslmode=disable")
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, BackendSQL, cfg.Storage.Backend)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 60*time.Second, cfg.Redis.CacheTTL)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "lendtrack.com", cfg.Auth.EmailDomain)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.True(t, cfg.GetDailyInterestPercent().Equal(decimal.NewFromInt(1)))
	assert.True(t, cfg.GetWeeklyInterestPercent().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "0 30 0 * * *", cfg.Scheduler.ReconcileCron)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", BackendSupabase)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	t.Setenv("SUPABASE_MAX_RETRIES", "5")
	t.Setenv("SUPABASE_TIMEOUT", "3s")
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSupabase, cfg.Storage.Backend)
	assert.Equal(t, 5, cfg.Supabase.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Supabase.Timeout)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Database.AutoMigrate)
}

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: "8080"},
		Storage:   StorageConfig{Backend: BackendSQL},
		Database:  DatabaseConfig{Driver: "sqlite3", URL: "file::memory:"},
		Auth:      AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour, EmailDomain: "lendtrack.com"},
		Scheduler: SchedulerConfig{ReconcileCron: "0 30 0 * * *", OverdueCron: "0 0 7 * * *"},
		Business:  BusinessConfig{Timezone: "Asia/Kolkata", DailyInterestPercent: "1", WeeklyInterestPercent: "10"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DATABASE_DRIVER"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "firebase" }, wantErr: "STORAGE_BACKEND"},
		{
			name:    "supabase without key",
			mutate:  func(c *Config) { c.Storage.Backend = BackendSupabase; c.Supabase.URL = "https://x.supabase.co" },
			wantErr: "SUPABASE_SERVICE_ROLE_KEY",
		},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "AUTH_JWT_SECRET"},
		{name: "bad timezone", mutate: func(c *Config) { c.Business.Timezone = "Mars/Olympus" }, wantErr: "BUSINESS_TIMEZONE"},
		{name: "bad percent", mutate: func(c *Config) { c.Business.DailyInterestPercent = "one" }, wantErr: "DAILY_INTEREST_PERCENT"},
		{name: "negative percent", mutate: func(c *Config) { c.Business.WeeklyInterestPercent = "-1" }, wantErr: "WEEKLY_INTEREST_PERCENT"},
		{name: "bad cron", mutate: func(c *Config) { c.Scheduler.OverdueCron = "every morning" }, wantErr: "SCHEDULER_OVERDUE_CRON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
