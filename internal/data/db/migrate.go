package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/materials-catalog/internal/domain/catalog"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.Category{},
		&catalog.Tag{},
		&catalog.Material{},
		&catalog.MaterialTag{},
		&catalog.Rating{},
		&catalog.UserHistory{},
		&catalog.MaterialAccess{},
		&catalog.Statistics{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureStatisticsRow(db)
}

// EnsureStatisticsRow creates the single statistics row when missing.
func EnsureStatisticsRow(db *gorm.DB) error {
	row := &catalog.Statistics{ID: catalog.StatisticsRowID}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(row).Error
}

var DefaultCategories = []catalog.Category{
	{Name: "Programming", Icon: "code", Description: "Languages, frameworks and tooling", DisplayOrder: 1},
	{Name: "Data", Icon: "database", Description: "Analytics, databases and machine learning", DisplayOrder: 2},
	{Name: "Cloud", Icon: "cloud", Description: "Infrastructure and operations", DisplayOrder: 3},
	{Name: "Security", Icon: "shield", Description: "Secure development and compliance", DisplayOrder: 4},
	{Name: "Soft skills", Icon: "users", Description: "Communication and leadership", DisplayOrder: 5},
}

// SeedCategories inserts categories by name, leaving existing rows untouched.
func SeedCategories(db *gorm.DB, categories []catalog.Category) error {
	for i := range categories {
		c := categories[i]
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&c).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	return nil
}
