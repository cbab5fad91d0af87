package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
)

func SeedCategory(tb testing.TB, db *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{Name: name, Icon: "book", Description: name + " materials"}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// MaterialOption adjusts a seeded material before insert.
type MaterialOption func(m *types.Material)

func SeedMaterial(tb testing.TB, db *gorm.DB, categoryID uint, title string, opts ...MaterialOption) *types.Material {
	tb.Helper()
	m := &types.Material{
		Title:       title,
		Type:        types.TypeVideo,
		CategoryID:  categoryID,
		Description: title + " description",
		Author:      "Ada",
		Level:       types.LevelBasic,
		Duration:    "1h",
		PublishDate: time.Now().UTC().Add(-time.Hour),
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	active := m.IsActive
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	// gorm skips zero values for columns with a default, so inactive rows need an explicit update.
	if !active {
		if err := db.Model(&types.Material{}).Where("id = ?", m.ID).Update("is_active", false).Error; err != nil {
			tb.Fatalf("deactivate material: %v", err)
		}
		m.IsActive = false
	}
	return m
}

func SeedTag(tb testing.TB, db *gorm.DB, materialID uint, name string) *types.Tag {
	tb.Helper()
	tag := &types.Tag{}
	if err := db.Where(types.Tag{Name: name}).FirstOrCreate(tag).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	if err := db.Create(&types.MaterialTag{MaterialID: materialID, TagID: tag.ID}).Error; err != nil {
		tb.Fatalf("seed material tag: %v", err)
	}
	return tag
}
