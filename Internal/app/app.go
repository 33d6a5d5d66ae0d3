package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	datafeed "github.com/fazecat/niftyscreener/Internal/database"
	"github.com/fazecat/niftyscreener/Internal/metrics"
	"github.com/fazecat/niftyscreener/Internal/utils/config"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

// App holds the long-lived collaborators shared by the CLI and the API server.
type App struct {
	Config  *config.Config
	Metrics *metrics.Collector
	Scanner *scanner.Service

	db    *sqlx.DB
	redis *redis.Client
}

// New wires the universe, bar source factory and scan service from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Metrics: metrics.NewCollector(),
	}

	universe, err := a.universe(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Cache.Enabled && cfg.Secrets.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Secrets.RedisAddr,
			Password: cfg.Secrets.RedisPassword,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Secrets.RedisAddr).Msg("Redis unreachable, bar cache will fall through")
		} else {
			log.Info().Str("addr", cfg.Secrets.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("Bar cache enabled")
		}
	}

	a.Scanner = scanner.NewService(universe, a.sourceFactory(), cfg.ScanOptions(a.Metrics))
	return a, nil
}

func (a *App) universe(ctx context.Context) (scanner.UniverseSource, error) {
	switch strings.ToLower(a.Config.Universe.Source) {
	case "postgres":
		db, err := datafeed.OpenDatabase(ctx, a.Config.Secrets.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open instrument database: %w", err)
		}
		a.db = db
		if err := datafeed.EnsureSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("ensure instrument schema: %w", err)
		}
		return datafeed.NewPostgresUniverse(db), nil
	default:
		return datafeed.NewCSVUniverse(a.Config.Universe.Path), nil
	}
}

func (a *App) sourceFactory() scanner.SourceFactory {
	opts := datafeed.SourceOptions{
		Provider:     a.Config.Provider.Name,
		Config:       a.Config.Provider.ProviderConfig,
		AlpacaSecret: a.Config.Secrets.AlpacaAPISecret,
		CacheTTL:     a.Config.Cache.TTL,
		Recorder:     a.Metrics,
	}
	if a.redis != nil {
		opts.Redis = a.redis
	}
	return func(credential string) (scanner.BarSource, error) {
		return datafeed.NewBarSource(credential, opts)
	}
}

// DB is the instrument database, nil unless the universe lives in Postgres.
func (a *App) DB() *sqlx.DB {
	return a.db
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
