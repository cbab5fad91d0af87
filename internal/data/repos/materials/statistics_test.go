package materials

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

func TestStatisticsRepoRecompute(t *testing.T) {
	db := testutil.SQLite(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewStatisticsRepo(db, testutil.Logger(t))
	cat := testutil.SeedCategory(t, db, "Cloud")

	testutil.SeedMaterial(t, db, cat.ID, "Video", func(m *types.Material) {
		m.Duration = "45 min"
		m.Rating = 4
	})
	testutil.SeedMaterial(t, db, cat.ID, "Course", func(m *types.Material) {
		m.Type = types.TypeCourse
		m.Duration = "2 horas"
		m.Rating = 3
	})
	testutil.SeedMaterial(t, db, cat.ID, "Book", func(m *types.Material) {
		m.Type = types.TypeBook
		m.Duration = "10h"
	})
	testutil.SeedMaterial(t, db, cat.ID, "Unparseable", func(m *types.Material) { m.Duration = "a while" })
	testutil.SeedMaterial(t, db, cat.ID, "Hidden", func(m *types.Material) {
		m.IsActive = false
		m.Duration = "100h"
		m.Rating = 1
	})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stats, err := repo.Recompute(dbc, now)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if stats.TotalMaterials != 4 {
		t.Fatalf("total_materials=%d", stats.TotalMaterials)
	}
	if stats.TotalCourses != 1 {
		t.Fatalf("total_courses=%d", stats.TotalCourses)
	}
	if stats.VideoContentHours != 2.75 {
		t.Fatalf("video_content_hours=%v", stats.VideoContentHours)
	}
	if stats.AverageRating != 3.5 {
		t.Fatalf("average_rating=%v", stats.AverageRating)
	}

	stored, err := repo.Get(dbc)
	if err != nil || stored == nil {
		t.Fatalf("Get: %+v err=%v", stored, err)
	}
	if stored.TotalMaterials != 4 || stored.LastCalculated == nil || !stored.LastCalculated.Equal(now) {
		t.Fatalf("stored stats: %+v", stored)
	}
	var byType map[string]int64
	if err := json.Unmarshal(stored.MaterialsByType, &byType); err != nil {
		t.Fatalf("materials_by_type: %v", err)
	}
	if byType["video"] != 2 || byType["course"] != 1 || byType["book"] != 1 {
		t.Fatalf("materials_by_type=%v", byType)
	}

	var rows int64
	db.Model(&types.Statistics{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("statistics must stay a single row, got %d", rows)
	}
}
