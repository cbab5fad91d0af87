package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type UserHistoryRepo interface {
	UpsertProgress(dbc dbctx.Context, row *types.UserHistory) error
	Touch(dbc dbctx.Context, userID uuid.UUID, materialID uint, at time.Time) error
	GetByUserAndMaterial(dbc dbctx.Context, userID uuid.UUID, materialID uint) (*types.UserHistory, error)
	DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type userHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserHistoryRepo(db *gorm.DB, baseLog *logger.Logger) UserHistoryRepo {
	return &userHistoryRepo{db: db, log: baseLog.With("repo", "UserHistoryRepo")}
}

var historyConflict = []clause.Column{{Name: "user_id"}, {Name: "material_id"}}

func (r *userHistoryRepo) UpsertProgress(dbc dbctx.Context, row *types.UserHistory) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   historyConflict,
			DoUpdates: clause.AssignmentColumns([]string{"progress_percentage", "last_position", "is_completed", "last_accessed"}),
		}).
		Create(row).Error
}

// Touch records a view without disturbing stored progress.
func (r *userHistoryRepo) Touch(dbc dbctx.Context, userID uuid.UUID, materialID uint, at time.Time) error {
	if userID == uuid.Nil {
		return nil
	}
	row := &types.UserHistory{UserID: userID, MaterialID: materialID, LastAccessed: at.UTC()}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   historyConflict,
			DoUpdates: clause.AssignmentColumns([]string{"last_accessed"}),
		}).
		Create(row).Error
}

func (r *userHistoryRepo) GetByUserAndMaterial(dbc dbctx.Context, userID uuid.UUID, materialID uint) (*types.UserHistory, error) {
	var row types.UserHistory
	err := dbc.DB(r.db).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userHistoryRepo) DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	if len(materialIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("material_id IN ?", materialIDs).Delete(&types.UserHistory{}).Error
}
