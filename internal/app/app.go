package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/db"
	"github.com/yungbote/materials-catalog/internal/data/repos"
	httpapi "github.com/yungbote/materials-catalog/internal/http"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Cache    cache.Cache
	Repos    repos.Set
	Services Services
	Server   *httpapi.Server

	redis   *goredis.Client
	closers []func(context.Context) error
}

// New wires the whole service: database, asset store, cache, services and router.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}

	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics(cfg.MetricsNamespace)
	}
	if shutdown := observability.InitOTel(ctx, log, cfg.Otel); shutdown != nil {
		a.closers = append(a.closers, shutdown)
	}

	theDB, closeDB, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, a.fail(err)
	}
	a.DB = theDB
	a.closers = append(a.closers, func(context.Context) error { return closeDB() })
	if err := Migrate(log, theDB, cfg.SeedCategories); err != nil {
		return nil, a.fail(err)
	}

	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return nil, a.fail(err)
	}

	a.Cache = cache.NewNoop()
	if cfg.Redis.Addr != "" {
		c, client, err := cache.NewRedisCache(log, cfg.Redis)
		if err != nil {
			return nil, a.fail(fmt.Errorf("init redis cache: %w", err))
		}
		a.Cache, a.redis = c, client
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
	}

	a.Repos = wireRepos(theDB, log)
	a.Services, err = wireServices(serviceDeps{
		DB:      theDB,
		Log:     log,
		Cfg:     cfg,
		Repos:   a.Repos,
		Bucket:  bucket,
		Cache:   a.Cache,
		Metrics: a.Metrics,
	})
	if err != nil {
		return nil, a.fail(err)
	}

	handlers := wireHandlers(log, theDB, cfg, a.Services)
	middleware := wireMiddleware(log, a.Services)
	a.Server = wireServer(log, cfg, a.Metrics, handlers, middleware)
	return a, nil
}

// OpenDatabase connects to Postgres, or to sqlite when SQLiteDSN is set.
func OpenDatabase(log *logger.Logger, cfg Config) (*gorm.DB, func() error, error) {
	if cfg.SQLiteDSN != "" {
		theDB, err := db.OpenSQLite(log, cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Warn("Using sqlite database", "dsn", cfg.SQLiteDSN)
		return theDB, func() error {
			sqlDB, err := theDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}, nil
	}
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres: %w", err)
	}
	return pg.DB(), pg.Close, nil
}

func Migrate(log *logger.Logger, theDB *gorm.DB, seedCategories bool) error {
	if err := db.AutoMigrateAll(theDB); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if seedCategories {
		if err := db.SeedCategories(theDB, db.DefaultCategories); err != nil {
			return err
		}
		log.Info("Seeded default categories", "count", len(db.DefaultCategories))
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 15*time.Second)
		if a.redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.redis, 15*time.Second)
		}
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}
	return a.Server.Serve(ctx, ":"+a.Cfg.Port)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}

func (a *App) fail(err error) error {
	_ = a.Close(context.Background())
	return err
}
