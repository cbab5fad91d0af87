package materials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type MaterialRepo interface {
	Create(dbc dbctx.Context, m *types.Material) error
	GetByID(dbc dbctx.Context, id uint) (*types.Material, error)
	GetByIDForUpdate(dbc dbctx.Context, id uint) (*types.Material, error)
	GetByIDForShare(dbc dbctx.Context, id uint) (*types.Material, error)
	GetActiveByID(dbc dbctx.Context, id uint) (*types.Material, error)
	UpdateFields(dbc dbctx.Context, id uint, cols map[string]interface{}) error
	IncrementCounter(dbc dbctx.Context, id uint, column string) (bool, error)
	SetRating(dbc dbctx.Context, id uint, average float64, count int64) error
	List(dbc dbctx.Context, filter types.Filter, page types.Page, now time.Time) ([]*types.Material, error)
	Count(dbc dbctx.Context, filter types.Filter, now time.Time) (int64, error)
	ListFeatured(dbc dbctx.Context, limit int) ([]*types.Material, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (r *materialRepo) Create(dbc dbctx.Context, m *types.Material) error {
	if m == nil {
		return nil
	}
	return dbc.DB(r.db).Create(m).Error
}

// GetByID returns nil without error when no row exists.
func (r *materialRepo) GetByID(dbc dbctx.Context, id uint) (*types.Material, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

// GetByIDForUpdate row-locks the material for the rest of the transaction.
func (r *materialRepo) GetByIDForUpdate(dbc dbctx.Context, id uint) (*types.Material, error) {
	return r.first(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// GetByIDForShare blocks writers that take the update lock, such as a hard
// delete, until the transaction ends.
func (r *materialRepo) GetByIDForShare(dbc dbctx.Context, id uint) (*types.Material, error) {
	return r.first(dbc.DB(r.db).Clauses(clause.Locking{Strength: "SHARE"}).Where("id = ?", id))
}

func (r *materialRepo) GetActiveByID(dbc dbctx.Context, id uint) (*types.Material, error) {
	return r.first(dbc.DB(r.db).Where("id = ? AND is_active = ?", id, true))
}

func (r *materialRepo) first(q *gorm.DB) (*types.Material, error) {
	var m types.Material
	if err := q.Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *materialRepo) UpdateFields(dbc dbctx.Context, id uint, cols map[string]interface{}) error {
	if len(cols) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Material{}).Where("id = ?", id).Updates(cols).Error
}

// IncrementCounter bumps view_count or download_count on an active material.
// It reports false when no active row matched.
func (r *materialRepo) IncrementCounter(dbc dbctx.Context, id uint, column string) (bool, error) {
	switch column {
	case "view_count", "download_count":
	default:
		return false, fmt.Errorf("unknown counter column %q", column)
	}
	res := dbc.DB(r.db).Model(&types.Material{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *materialRepo) SetRating(dbc dbctx.Context, id uint, average float64, count int64) error {
	return dbc.DB(r.db).Model(&types.Material{}).Where("id = ?", id).
		Updates(map[string]interface{}{"rating": average, "rating_count": count}).Error
}

func (r *materialRepo) List(dbc dbctx.Context, filter types.Filter, page types.Page, now time.Time) ([]*types.Material, error) {
	var results []*types.Material
	q := applyFilter(dbc.DB(r.db).Model(&types.Material{}), filter, now).
		Order("material.publish_date DESC").
		Order("material.id DESC").
		Limit(page.PageSize).
		Offset(page.Offset())
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) Count(dbc dbctx.Context, filter types.Filter, now time.Time) (int64, error) {
	var n int64
	if err := applyFilter(dbc.DB(r.db).Model(&types.Material{}), filter, now).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *materialRepo) ListFeatured(dbc dbctx.Context, limit int) ([]*types.Material, error) {
	var results []*types.Material
	if limit <= 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("publish_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Material{}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyFilter is the only place catalog predicates are built. List and Count
// both go through it so a page and its total can never disagree.
func applyFilter(q *gorm.DB, f types.Filter, now time.Time) *gorm.DB {
	q = q.Where("material.is_active = ?", true)
	if f.CategoryID != nil {
		q = q.Where("material.category_id = ?", *f.CategoryID)
	}
	if f.Level != "" {
		q = q.Where("material.level = ?", f.Level)
	}
	if bound, ok := f.DateRange.LowerBound(now); ok {
		q = q.Where("material.publish_date >= ?", bound.UTC())
	}
	if f.MinRating != nil {
		q = q.Where("material.rating >= ?", *f.MinRating)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(LOWER(material.title) LIKE ? ESCAPE '\'
			OR LOWER(material.description) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM material_tag mt
				JOIN tag t ON t.id = mt.tag_id
				WHERE mt.material_id = material.id AND LOWER(t.name) LIKE ? ESCAPE '\'
			))`, pattern, pattern, pattern)
	}
	return q
}
