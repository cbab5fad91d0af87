package materials

import (
	"gorm.io/gorm"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type MaterialAccessRepo interface {
	Grant(dbc dbctx.Context, rows []*types.MaterialAccess) error
	ListByMaterialID(dbc dbctx.Context, materialID uint) ([]*types.MaterialAccess, error)
	DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error
}

type materialAccessRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialAccessRepo(db *gorm.DB, baseLog *logger.Logger) MaterialAccessRepo {
	repoLog := baseLog.With("repo", "MaterialAccessRepo")
	return &materialAccessRepo{db: db, log: repoLog}
}

func (r *materialAccessRepo) Grant(dbc dbctx.Context, rows []*types.MaterialAccess) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *materialAccessRepo) ListByMaterialID(dbc dbctx.Context, materialID uint) ([]*types.MaterialAccess, error) {
	var results []*types.MaterialAccess
	if err := dbc.DB(r.db).Where("material_id = ?", materialID).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialAccessRepo) DeleteByMaterialIDs(dbc dbctx.Context, materialIDs []uint) error {
	if len(materialIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("material_id IN ?", materialIDs).Delete(&types.MaterialAccess{}).Error
}
