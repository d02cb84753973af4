// Package app assembles the storage, cache and services both binaries run on.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/segyhp/lendtrack/internal/cache"
	"github.com/segyhp/lendtrack/internal/config"
	"github.com/segyhp/lendtrack/internal/observability"
	"github.com/segyhp/lendtrack/internal/repository"
	"github.com/segyhp/lendtrack/internal/repository/supabase"
	"github.com/segyhp/lendtrack/internal/resilience"
	"github.com/segyhp/lendtrack/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type closer interface {
	Close() error
}

// App holds the wired dependencies of a running process
type App struct {
	Store      repository.Store
	Cache      cache.Cache
	Collection *service.CollectionService
	Auth       *service.AuthService

	closers []closer
}

// New connects the configured store and cache and builds the services on top
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, metrics, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	c, err := a.openCache(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = c

	a.Collection = service.NewCollectionService(store, c, metrics, logger, cfg)
	a.Auth = service.NewAuthService(store.Admins(), cfg.Auth, logger)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSupabase:
		cb := resilience.NewCircuitBreaker("supabase", func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		})
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.Supabase.Timeout},
			cfg.Supabase.URL,
			cfg.Supabase.AnonKey,
			cfg.Supabase.ServiceRoleKey,
			cb,
			resilience.Config{
				MaxRetries:     cfg.Supabase.MaxRetries,
				InitialBackoff: cfg.Supabase.InitialBackoff,
			},
			logger,
		)
		logger.Info("using supabase storage", zap.String("url", cfg.Supabase.URL))
		return supabase.NewStore(client), nil

	default:
		db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL, repository.DBOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db)

		if cfg.Database.AutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
			logger.Info("database schema migrated")
		}
		logger.Info("using sql storage", zap.String("driver", cfg.Database.Driver))
		return repository.NewSQLStore(db), nil
	}
}

func (a *App) openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if !cfg.CacheEnabled() {
		logger.Info("REDIS_URL not set, using in-process cache")
		c := cache.NewInMemory(cfg.Redis.CacheTTL)
		a.closers = append(a.closers, c)
		return c, nil
	}

	c, err := cache.NewRedis(cfg.Redis.URL, cfg.Redis.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	a.closers = append(a.closers, c)

	if err := c.Ping(ctx); err != nil {
		// The dashboard falls back to recomputing on cache errors
		logger.Warn("redis unreachable at startup", zap.Error(err))
	}
	return c, nil
}

// Close releases connections in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
