package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

func TestRatingRepoUpsertAndAggregate(t *testing.T) {
	db := testutil.SQLite(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewRatingRepo(db, testutil.Logger(t))

	cat := testutil.SeedCategory(t, db, "Data")
	m := testutil.SeedMaterial(t, db, cat.ID, "Statistics 101")
	alice, bob := uuid.New(), uuid.New()

	if err := repo.Upsert(dbc, &types.Rating{MaterialID: m.ID, UserID: alice, Value: 3}); err != nil {
		t.Fatalf("Upsert #1: %v", err)
	}
	comment := "better on second read"
	if err := repo.Upsert(dbc, &types.Rating{MaterialID: m.ID, UserID: alice, Value: 5, Comment: &comment}); err != nil {
		t.Fatalf("Upsert #2: %v", err)
	}

	avg, n, err := repo.Aggregate(dbc, m.ID)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if n != 1 || avg != 5 {
		t.Fatalf("after overwrite: avg=%v count=%d", avg, n)
	}
	stored, err := repo.GetByMaterialAndUser(dbc, m.ID, alice)
	if err != nil || stored == nil || stored.Value != 5 || stored.Comment == nil || *stored.Comment != comment {
		t.Fatalf("stored rating: %+v err=%v", stored, err)
	}

	if err := repo.Upsert(dbc, &types.Rating{MaterialID: m.ID, UserID: bob, Value: 2}); err != nil {
		t.Fatalf("Upsert bob: %v", err)
	}
	avg, n, _ = repo.Aggregate(dbc, m.ID)
	if n != 2 || avg != 3.5 {
		t.Fatalf("two users: avg=%v count=%d", avg, n)
	}

	if err := repo.DeleteByMaterialIDs(dbc, []uint{m.ID}); err != nil {
		t.Fatalf("DeleteByMaterialIDs: %v", err)
	}
	avg, n, _ = repo.Aggregate(dbc, m.ID)
	if n != 0 || avg != 0 {
		t.Fatalf("after delete: avg=%v count=%d", avg, n)
	}
}
