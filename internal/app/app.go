// Package app wires configuration into a ready Loader and its collaborators.
package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-tickets-dashboard/internal/cache"
	"go-tickets-dashboard/internal/config"
	"go-tickets-dashboard/internal/logging"
	"go-tickets-dashboard/internal/pipeline"
	"go-tickets-dashboard/internal/store"
)

// App holds the long-lived dashboard components
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Loader  *pipeline.Loader
	History *store.DB // nil when history is disabled

	redis *redis.Client
}

// New builds the logger, caches, history store and loader described by cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	opts := []pipeline.LoaderOption{
		pipeline.WithVariant(cfg.Source.Variant),
		pipeline.WithLogger(logger.Named("loader")),
	}

	if cfg.Cache.RedisURL != "" {
		client, err := cache.ConnectRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			// run without the shared cache rather than fail startup
			logger.Warn("redis unavailable, continuing without blob cache", zap.Error(err))
		} else {
			a.redis = client
			opts = append(opts, pipeline.WithBlobCache(cache.NewRedis(client, cfg.Cache.Prefix, cfg.RedisTTL())))
			logger.Info("redis blob cache enabled")
		}
	}

	if cfg.History.DatabasePath != "" {
		db, err := store.Open(cfg.History.DatabasePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.History = db
		opts = append(opts, pipeline.WithRecorder(db))
		logger.Info("load history enabled", zap.String("path", cfg.History.DatabasePath))
	}

	a.Loader = pipeline.NewLoader(
		pipeline.NewHTTPFetcher(cfg.FetchTimeout()),
		cache.NewMemory(cfg.CacheTTL()),
		opts...,
	)
	return a, nil
}

// Close releases the history database and redis client
func (a *App) Close() {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn("close history", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("close redis", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
