package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

func TestNewWiresSQLiteApp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stubBucketFactory(t)

	cfg := DefaultConfig()
	cfg.SQLiteDSN = "file:app_wiring_test?mode=memory&cache=shared"
	cfg.SeedCategories = true
	cfg.Storage.MaterialBucket = "materials"

	a, err := New(context.Background(), logger.NewNop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("categories: %d %s", rec.Code, rec.Body.String())
	}
	var cats []types.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) == 0 || cats[0].Name != "Programming" {
		t.Fatalf("seeded categories missing: %+v", cats)
	}

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestNewFailsOnStorageMisconfiguration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SQLiteDSN = "file:app_storage_test?mode=memory&cache=shared"
	cfg.Storage = StorageConfig{Mode: "s3"}
	if _, err := New(context.Background(), logger.NewNop(), cfg); err == nil {
		t.Fatalf("expected storage bootstrap error")
	}
}

func TestRecomputeStatisticsCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SQLiteDSN = "file:app_stats_test?mode=memory&cache=shared"
	stats, err := RecomputeStatistics(context.Background(), logger.NewNop(), cfg)
	if err != nil {
		t.Fatalf("RecomputeStatistics: %v", err)
	}
	if stats.TotalMaterials != 0 || stats.LastCalculated == nil {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
