package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/aggregates"
	"github.com/yungbote/materials-catalog/internal/data/repos"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/gcp"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
	"github.com/yungbote/materials-catalog/internal/services"
)

type Services struct {
	Catalog    domainagg.CatalogAggregate
	Tokens     services.TokenService
	Query      services.CatalogQueryService
	Write      services.CatalogWriteService
	Engagement services.EngagementService
}

type serviceDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Cfg     Config
	Repos   repos.Set
	Bucket  gcp.BucketService
	Cache   cache.Cache
	Metrics *observability.Metrics
}

func wireServices(deps serviceDeps) (Services, error) {
	deps.Log.Info("Wiring services...")

	tokens, err := services.NewTokenService(deps.Log, deps.Cfg.JWTSecretKey, deps.Cfg.JWTIssuer)
	if err != nil {
		return Services{}, fmt.Errorf("init token service: %w", err)
	}
	agg := wireCatalogAggregate(deps.DB, deps.Log, deps.Cfg, deps.Repos, deps.Metrics)
	query := services.NewCatalogQueryService(deps.DB, deps.Log, deps.Repos, agg, deps.Cache, deps.Metrics, deps.Cfg.DefaultPageSize)

	return Services{
		Catalog:    agg,
		Tokens:     tokens,
		Query:      query,
		Write:      services.NewCatalogWriteService(deps.Log, agg, deps.Bucket, query, deps.Cache, deps.Metrics),
		Engagement: services.NewEngagementService(deps.DB, deps.Log, deps.Repos, deps.Bucket, deps.Metrics),
	}, nil
}

func wireCatalogAggregate(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, metrics *observability.Metrics) domainagg.CatalogAggregate {
	return aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:          db,
			Log:         log,
			Hooks:       aggregates.NewObservabilityHooks(metrics),
			MaxAttempts: cfg.WriteMaxAttempts,
		},
		Repos: set,
	})
}
