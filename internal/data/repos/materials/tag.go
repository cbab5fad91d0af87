package materials

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type TagRepo interface {
	FindOrCreate(dbc dbctx.Context, name string) (*types.Tag, error)
	List(dbc dbctx.Context) ([]*types.Tag, error)
	ListByMaterialIDs(dbc dbctx.Context, materialIDs []uint) (map[uint][]types.Tag, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	repoLog := baseLog.With("repo", "TagRepo")
	return &tagRepo{db: db, log: repoLog}
}

// FindOrCreate resolves a tag by exact name. Concurrent callers racing on the
// same new name converge on one row through the unique index.
func (r *tagRepo) FindOrCreate(dbc dbctx.Context, name string) (*types.Tag, error) {
	name = strings.TrimSpace(name)
	db := dbc.DB(r.db)

	var existing types.Tag
	err := db.Where("name = ?", name).Take(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag := &types.Tag{Name: name}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(tag)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 && tag.ID != 0 {
		return tag, nil
	}

	existing = types.Tag{}
	err = db.Where("name = ?", name).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Debug("Tag insert raced with an uncommitted writer", "tag", name)
		return nil, ErrConcurrentInsert
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *tagRepo) List(dbc dbctx.Context) ([]*types.Tag, error) {
	var results []*types.Tag
	if err := dbc.DB(r.db).Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *tagRepo) ListByMaterialIDs(dbc dbctx.Context, materialIDs []uint) (map[uint][]types.Tag, error) {
	out := make(map[uint][]types.Tag, len(materialIDs))
	if len(materialIDs) == 0 {
		return out, nil
	}
	type row struct {
		MaterialID uint
		TagID      uint
		Name       string
	}
	var rows []row
	if err := dbc.DB(r.db).
		Table("material_tag").
		Select("material_tag.material_id AS material_id, tag.id AS tag_id, tag.name AS name").
		Joins("JOIN tag ON tag.id = material_tag.tag_id").
		Where("material_tag.material_id IN ?", materialIDs).
		Order("tag.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.MaterialID] = append(out[rw.MaterialID], types.Tag{ID: rw.TagID, Name: rw.Name})
	}
	return out, nil
}
