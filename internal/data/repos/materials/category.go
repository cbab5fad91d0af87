package materials

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type CategoryRepo interface {
	List(dbc dbctx.Context) ([]*types.Category, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Category, error)
	NamesByIDs(dbc dbctx.Context, ids []uint) (map[uint]string, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	var results []*types.Category
	if err := dbc.DB(r.db).Order("display_order ASC").Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil without error when the category does not exist.
func (r *categoryRepo) GetByID(dbc dbctx.Context, id uint) (*types.Category, error) {
	var c types.Category
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) NamesByIDs(dbc dbctx.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []types.Category
	if err := dbc.DB(r.db).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c.Name
	}
	return out, nil
}
