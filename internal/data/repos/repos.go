package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/repos/materials"
	"github.com/yungbote/materials-catalog/internal/data/repos/user"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type MaterialRepo = materials.MaterialRepo
type CategoryRepo = materials.CategoryRepo
type TagRepo = materials.TagRepo
type MaterialTagRepo = materials.MaterialTagRepo
type MaterialAccessRepo = materials.MaterialAccessRepo
type StatisticsRepo = materials.StatisticsRepo

type RatingRepo = user.RatingRepo
type UserHistoryRepo = user.UserHistoryRepo

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return materials.NewMaterialRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return materials.NewCategoryRepo(db, baseLog)
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return materials.NewTagRepo(db, baseLog)
}
func NewMaterialTagRepo(db *gorm.DB, baseLog *logger.Logger) MaterialTagRepo {
	return materials.NewMaterialTagRepo(db, baseLog)
}
func NewMaterialAccessRepo(db *gorm.DB, baseLog *logger.Logger) MaterialAccessRepo {
	return materials.NewMaterialAccessRepo(db, baseLog)
}
func NewStatisticsRepo(db *gorm.DB, baseLog *logger.Logger) StatisticsRepo {
	return materials.NewStatisticsRepo(db, baseLog)
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return user.NewRatingRepo(db, baseLog)
}
func NewUserHistoryRepo(db *gorm.DB, baseLog *logger.Logger) UserHistoryRepo {
	return user.NewUserHistoryRepo(db, baseLog)
}

// Set is every catalog repository bound to one database handle.
type Set struct {
	Material       MaterialRepo
	Category       CategoryRepo
	Tag            TagRepo
	MaterialTag    MaterialTagRepo
	MaterialAccess MaterialAccessRepo
	Statistics     StatisticsRepo
	Rating         RatingRepo
	UserHistory    UserHistoryRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Material:       NewMaterialRepo(db, baseLog),
		Category:       NewCategoryRepo(db, baseLog),
		Tag:            NewTagRepo(db, baseLog),
		MaterialTag:    NewMaterialTagRepo(db, baseLog),
		MaterialAccess: NewMaterialAccessRepo(db, baseLog),
		Statistics:     NewStatisticsRepo(db, baseLog),
		Rating:         NewRatingRepo(db, baseLog),
		UserHistory:    NewUserHistoryRepo(db, baseLog),
	}
}
