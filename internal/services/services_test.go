package services

import (
	"io"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/aggregates"
	aggtest "github.com/yungbote/materials-catalog/internal/data/aggregates/testutil"
	"github.com/yungbote/materials-catalog/internal/data/repos"
	repotest "github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/gcp/gcptest"
)

type harness struct {
	db         *gorm.DB
	bucket     *gcptest.FakeBucket
	cache      *cache.Memory
	hooks      *aggtest.HooksRecorder
	agg        domainagg.CatalogAggregate
	write      CatalogWriteService
	query      CatalogQueryService
	engagement EngagementService
}

// newHarness wires the services over an in-memory sqlite catalog. runner may be nil.
func newHarness(t *testing.T, runner aggregates.TxRunner) *harness {
	t.Helper()
	db := repotest.SQLite(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	hooks := &aggtest.HooksRecorder{}
	agg := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:  aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks},
		Repos: set,
	})
	bucket := gcptest.NewFakeBucket()
	c := cache.NewMemory()
	query := NewCatalogQueryService(db, log, set, agg, c, nil, 0)
	return &harness{
		db:         db,
		bucket:     bucket,
		cache:      c,
		hooks:      hooks,
		agg:        agg,
		write:      NewCatalogWriteService(log, agg, bucket, query, c, nil),
		query:      query,
		engagement: NewEngagementService(db, log, set, bucket, nil),
	}
}

func upload(name, body string) *types.AssetUpload {
	return &types.AssetUpload{
		Filename:    name,
		ContentType: "application/octet-stream",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func validDraft(categoryID uint, title string) types.MaterialDraft {
	return types.MaterialDraft{
		Title:       title,
		Type:        types.TypeCourse,
		CategoryID:  categoryID,
		Description: "Hands-on course",
		Author:      "Linus",
		Level:       types.LevelBasic,
		Duration:    "2h 30min",
	}
}

func (h *harness) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := h.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
