package app

import (
	"context"
	"time"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

// RecomputeStatistics rebuilds the statistics row outside the HTTP server.
func RecomputeStatistics(ctx context.Context, log *logger.Logger, cfg Config) (*types.Statistics, error) {
	theDB, closeDB, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeDB() }()
	if err := Migrate(log, theDB, false); err != nil {
		return nil, err
	}
	agg := wireCatalogAggregate(theDB, log, cfg, wireRepos(theDB, log), nil)
	return agg.RecomputeStatistics(ctx, time.Now().UTC())
}
