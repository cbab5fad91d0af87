package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type RatingRepo interface {
	Upsert(dbc dbctx.Context, row *types.Rating) error
	GetByMaterialAndUser(dbc dbctx.Context, materialID uint, userID uuid.UUID) (*types.Rating, error)
	Aggregate(dbc dbctx.Context, materialID uint) (average float64, count int64, err error)
	DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

// Upsert keeps one rating per (material, user); a second submission overwrites the first.
func (r *ratingRepo) Upsert(dbc dbctx.Context, row *types.Rating) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "material_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "comment", "updated_at"}),
		}).
		Create(row).Error
}

func (r *ratingRepo) GetByMaterialAndUser(dbc dbctx.Context, materialID uint, userID uuid.UUID) (*types.Rating, error) {
	var row types.Rating
	err := dbc.DB(r.db).
		Where("material_id = ? AND user_id = ?", materialID, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ratingRepo) Aggregate(dbc dbctx.Context, materialID uint) (float64, int64, error) {
	var agg struct {
		Average float64
		Total   int64
	}
	if err := dbc.DB(r.db).Model(&types.Rating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS total").
		Where("material_id = ?", materialID).
		Scan(&agg).Error; err != nil {
		return 0, 0, err
	}
	return agg.Average, agg.Total, nil
}

func (r *ratingRepo) DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	if len(materialIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("material_id IN ?", materialIDs).Delete(&types.Rating{}).Error
}
