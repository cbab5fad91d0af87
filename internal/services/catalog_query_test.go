package services

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	repotest "github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/gcp"
)

func TestListPaginatesAndHydrates(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Programming")
	base := time.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < 5; i++ {
		m := repotest.SeedMaterial(t, h.db, cat.ID, fmt.Sprintf("Go %d", i), func(m *types.Material) {
			m.PublishDate = base.Add(time.Duration(i) * time.Minute)
		})
		repotest.SeedTag(t, h.db, m.ID, "go")
	}
	repotest.SeedMaterial(t, h.db, cat.ID, "Hidden", func(m *types.Material) { m.IsActive = false })

	page, err := h.query.List(ctx, types.Filter{}, types.Page{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.TotalItems != 5 || page.Pagination.TotalPages != 3 || page.Pagination.Page != 2 {
		t.Fatalf("pagination: %+v", page.Pagination)
	}
	if len(page.Items) != 2 || page.Items[0].Title != "Go 2" || page.Items[1].Title != "Go 1" {
		t.Fatalf("page items: %v", titles(page.Items))
	}
	for _, m := range page.Items {
		if m.CategoryName != "Programming" || len(m.Tags) != 1 || m.Tags[0].Name != "go" {
			t.Fatalf("not hydrated: %+v", m)
		}
	}

	defaults, err := h.query.List(ctx, types.Filter{}, types.Page{})
	if err != nil || defaults.Pagination.PageSize != types.DefaultPageSize || defaults.Pagination.Page != 1 {
		t.Fatalf("default page: %+v err=%v", defaults, err)
	}
}

func TestListRejectsUnknownDateRange(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.query.List(context.Background(), types.Filter{DateRange: "last_decade"}, types.Page{})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestGetCountsViewAndRecordsHistory(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Data")
	m := repotest.SeedMaterial(t, h.db, cat.ID, "Viewed")

	got, err := h.query.Get(ctx, m.ID)
	if err != nil || got.ViewCount != 1 {
		t.Fatalf("Get: %+v err=%v", got, err)
	}
	if n := h.count(t, &types.UserHistory{}, ""); n != 0 {
		t.Fatalf("anonymous view wrote history")
	}

	uid := uuid.New()
	authed := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: uid, Role: ctxutil.RoleUser})
	if _, err := h.query.Get(authed, m.ID); err != nil {
		t.Fatalf("Get as user: %v", err)
	}
	if n := h.count(t, &types.UserHistory{}, "user_id = ? AND material_id = ?", uid, m.ID); n != 1 {
		t.Fatalf("history rows=%d", n)
	}
	again, _ := h.query.Lookup(ctx, m.ID)
	if again.ViewCount != 2 {
		t.Fatalf("Lookup must not count views: %d", again.ViewCount)
	}
	if _, err := h.query.Get(ctx, 4242); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestFeaturedClampsLimit(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Cloud")
	for i := 0; i < 8; i++ {
		repotest.SeedMaterial(t, h.db, cat.ID, fmt.Sprintf("F%d", i), func(m *types.Material) { m.IsFeatured = true })
	}
	repotest.SeedMaterial(t, h.db, cat.ID, "Plain")

	def, err := h.query.Featured(ctx, 0)
	if err != nil || len(def) != DefaultFeaturedLimit {
		t.Fatalf("default limit: %d err=%v", len(def), err)
	}
	all, err := h.query.Featured(ctx, 500)
	if err != nil || len(all) != 8 {
		t.Fatalf("clamped limit: %d err=%v", len(all), err)
	}
	three, _ := h.query.Featured(ctx, 3)
	if len(three) != 3 || three[0].ID != all[0].ID {
		t.Fatalf("limit 3 from cache: %v", titles(three))
	}
}

func TestStatisticsComputedOnFirstRead(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Cloud")
	repotest.SeedMaterial(t, h.db, cat.ID, "Video", func(m *types.Material) { m.Duration = "45 min" })

	stats, err := h.query.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.LastCalculated == nil || stats.TotalMaterials != 1 || stats.VideoContentHours != 0.75 {
		t.Fatalf("statistics: %+v", stats)
	}
}

func TestTrackAndProgress(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Data")
	m := repotest.SeedMaterial(t, h.db, cat.ID, "Tracked")

	if err := h.engagement.Track(ctx, m.ID, types.TrackDownload); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := h.engagement.Track(ctx, m.ID, "share"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("unknown action: %v", err)
	}
	got, _ := h.query.Lookup(ctx, m.ID)
	if got.DownloadCount != 1 || got.ViewCount != 0 {
		t.Fatalf("counters: view=%d download=%d", got.ViewCount, got.DownloadCount)
	}

	uid := uuid.New()
	if _, err := h.engagement.GetProgress(ctx, uid, m.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("progress before save: %v", err)
	}
	row, err := h.engagement.SaveProgress(ctx, ProgressInput{UserID: uid, MaterialID: m.ID, Percentage: 50, Position: 120})
	if err != nil || row.ProgressPercentage != 50 || row.LastPosition != 120 || row.IsCompleted {
		t.Fatalf("SaveProgress: %+v err=%v", row, err)
	}
	row, err = h.engagement.SaveProgress(ctx, ProgressInput{UserID: uid, MaterialID: m.ID, Percentage: 100, Position: 300, Completed: true})
	if err != nil || !row.IsCompleted || row.ProgressPercentage != 100 {
		t.Fatalf("SaveProgress update: %+v err=%v", row, err)
	}
	if n := h.count(t, &types.UserHistory{}, "user_id = ?", uid); n != 1 {
		t.Fatalf("history rows=%d", n)
	}
	if _, err := h.engagement.SaveProgress(ctx, ProgressInput{UserID: uid, MaterialID: m.ID, Percentage: 101}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("out of range: %v", err)
	}
}

func TestOpenAssetStreamsAndCountsDownload(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cat := repotest.SeedCategory(t, h.db, "Data")
	key := "materials/abc/slides.pdf"
	h.bucket.Put(gcp.BucketCategoryMaterialFile, key, []byte("%PDF-1.7"))
	m := repotest.SeedMaterial(t, h.db, cat.ID, "Slides", func(m *types.Material) { m.FilePath = &key })

	stream, err := h.engagement.OpenAsset(ctx, m.ID, AssetFile)
	if err != nil {
		t.Fatalf("OpenAsset: %v", err)
	}
	raw, _ := io.ReadAll(stream.Body)
	_ = stream.Body.Close()
	if string(raw) != "%PDF-1.7" || stream.ContentType != "application/pdf" || stream.Filename != "slides.pdf" {
		t.Fatalf("stream: %q %s %s", raw, stream.ContentType, stream.Filename)
	}
	got, _ := h.query.Lookup(ctx, m.ID)
	if got.DownloadCount != 1 {
		t.Fatalf("download_count=%d", got.DownloadCount)
	}
	if _, err := h.engagement.OpenAsset(ctx, m.ID, AssetThumbnail); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing thumbnail: %v", err)
	}
}

func titles(items []*types.Material) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.Title)
	}
	return out
}
