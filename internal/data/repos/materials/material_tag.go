package materials

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type MaterialTagRepo interface {
	Link(dbc dbctx.Context, materialID uint, tagIDs []uint) error
	TagIDsByMaterialID(dbc dbctx.Context, materialID uint) ([]uint, error)
	DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type materialTagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialTagRepo(db *gorm.DB, baseLog *logger.Logger) MaterialTagRepo {
	repoLog := baseLog.With("repo", "MaterialTagRepo")
	return &materialTagRepo{db: db, log: repoLog}
}

// Link is idempotent: already linked pairs are left alone.
func (r *materialTagRepo) Link(dbc dbctx.Context, materialID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]types.MaterialTag, 0, len(tagIDs))
	seen := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, types.MaterialTag{MaterialID: materialID, TagID: id})
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *materialTagRepo) TagIDsByMaterialID(dbc dbctx.Context, materialID uint) ([]uint, error) {
	var ids []uint
	if err := dbc.DB(r.db).Model(&types.MaterialTag{}).
		Where("material_id = ?", materialID).
		Order("tag_id ASC").
		Pluck("tag_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *materialTagRepo) DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	if len(materialIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("material_id IN ?", materialIDs).Delete(&types.MaterialTag{}).Error
}
