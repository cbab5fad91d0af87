package materials

import (
	"context"
	"testing"

	"github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

func TestTagRepoFindOrCreateReusesExisting(t *testing.T) {
	db := testutil.SQLite(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewTagRepo(db, testutil.Logger(t))

	if err := db.Create(&types.Tag{ID: 7, Name: "python"}).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	py, err := repo.FindOrCreate(dbc, "python")
	if err != nil {
		t.Fatalf("FindOrCreate existing: %v", err)
	}
	if py.ID != 7 {
		t.Fatalf("want id 7, got %d", py.ID)
	}

	fresh, err := repo.FindOrCreate(dbc, " robustez ")
	if err != nil {
		t.Fatalf("FindOrCreate new: %v", err)
	}
	if fresh.ID == 0 || fresh.ID == 7 || fresh.Name != "robustez" {
		t.Fatalf("unexpected new tag: %+v", fresh)
	}
	again, err := repo.FindOrCreate(dbc, "robustez")
	if err != nil || again.ID != fresh.ID {
		t.Fatalf("second FindOrCreate: %+v err=%v", again, err)
	}

	// Names are matched exactly.
	upper, err := repo.FindOrCreate(dbc, "Python")
	if err != nil || upper.ID == 7 {
		t.Fatalf("case-sensitive match expected: %+v err=%v", upper, err)
	}

	all, err := repo.List(dbc)
	if err != nil || len(all) != 3 {
		t.Fatalf("List: len=%d err=%v", len(all), err)
	}
}

func TestMaterialTagRepoLinkIsIdempotent(t *testing.T) {
	db := testutil.SQLite(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	log := testutil.Logger(t)
	tags := NewTagRepo(db, log)
	links := NewMaterialTagRepo(db, log)

	cat := testutil.SeedCategory(t, db, "Programming")
	m := testutil.SeedMaterial(t, db, cat.ID, "Go")
	a, _ := tags.FindOrCreate(dbc, "go")
	b, _ := tags.FindOrCreate(dbc, "backend")

	for i := 0; i < 2; i++ {
		if err := links.Link(dbc, m.ID, []uint{a.ID, b.ID, a.ID}); err != nil {
			t.Fatalf("Link #%d: %v", i, err)
		}
	}
	ids, err := links.TagIDsByMaterialID(dbc, m.ID)
	if err != nil {
		t.Fatalf("TagIDsByMaterialID: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("want 2 links, got %v", ids)
	}

	byMaterial, err := tags.ListByMaterialIDs(dbc, []uint{m.ID})
	if err != nil {
		t.Fatalf("ListByMaterialIDs: %v", err)
	}
	got := byMaterial[m.ID]
	if len(got) != 2 || got[0].Name != "backend" || got[1].Name != "go" {
		t.Fatalf("hydrated tags: %+v", got)
	}

	if err := links.DeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
		t.Fatalf("DeleteByMaterialIDs: %v", err)
	}
	if ids, _ := links.TagIDsByMaterialID(dbc, m.ID); len(ids) != 0 {
		t.Fatalf("links survived delete: %v", ids)
	}
}

func TestTagRepoFindOrCreatePostgres(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewTagRepo(db, testutil.Logger(t))

	first, err := repo.FindOrCreate(dbc, "pg-only-tag")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	second, err := repo.FindOrCreate(dbc, "pg-only-tag")
	if err != nil || second.ID != first.ID {
		t.Fatalf("second FindOrCreate: %+v err=%v", second, err)
	}
}
