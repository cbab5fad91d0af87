package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/materials-catalog/internal/data/repos"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

type CatalogAggregateDeps struct {
	Base  BaseDeps
	Repos repos.Set
}

type catalogAggregate struct {
	deps  BaseDeps
	repos repos.Set
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	base := deps.Base.withDefaults()
	base.Log = base.Log.With("aggregate", "CatalogAggregate")
	return &catalogAggregate{deps: base, repos: deps.Repos}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) now(at time.Time) time.Time {
	if at.IsZero() {
		return a.deps.Now()
	}
	return at.UTC()
}

func (a *catalogAggregate) CreateMaterial(ctx context.Context, in domainagg.CreateMaterialInput) (domainagg.CreateMaterialResult, error) {
	const op = "catalog.create_material"
	var out domainagg.CreateMaterialResult
	now := a.now(in.CreatedAt)

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		out = domainagg.CreateMaterialResult{}
		if problems := in.Draft.Problems(); len(problems) > 0 {
			return ValidationError(strings.Join(problems, "; "))
		}
		if err := a.requireCategory(dbc, in.Draft.CategoryID); err != nil {
			return err
		}

		m := materialFromDraft(in.Draft, now)
		m.FilePath = nonEmpty(in.FilePath)
		m.ThumbnailPath = nonEmpty(in.ThumbnailPath)
		if err := a.repos.Material.Create(dbc, m); err != nil {
			return err
		}

		tagIDs, err := a.resolveTags(dbc, m.ID, in.TagNames)
		if err != nil {
			return err
		}
		if _, err := a.repos.Statistics.Recompute(dbc, now); err != nil {
			return err
		}
		view, err := a.snapshot(dbc, m.ID)
		if err != nil {
			return err
		}
		out = domainagg.CreateMaterialResult{MaterialID: m.ID, TagIDs: tagIDs, Material: view}
		return nil
	})
	return out, err
}

func (a *catalogAggregate) UpdateMaterial(ctx context.Context, in domainagg.UpdateMaterialInput) (domainagg.UpdateMaterialResult, error) {
	const op = "catalog.update_material"
	var out domainagg.UpdateMaterialResult
	now := a.now(in.UpdatedAt)

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		out = domainagg.UpdateMaterialResult{MaterialID: in.MaterialID}
		if problems := in.Patch.Problems(); len(problems) > 0 {
			return ValidationError(strings.Join(problems, "; "))
		}
		current, err := a.repos.Material.GetByIDForUpdate(dbc, in.MaterialID)
		if err != nil {
			return err
		}
		if current == nil {
			return NotFoundError(fmt.Sprintf("material %d not found", in.MaterialID))
		}
		if in.Patch.CategoryID != nil {
			if err := a.requireCategory(dbc, *in.Patch.CategoryID); err != nil {
				return err
			}
		}

		cols := in.Patch.Columns()
		if key := nonEmpty(in.FilePath); key != nil {
			cols["file_path"] = *key
			out.ReplacedFilePath = replaced(current.FilePath, *key)
		}
		if key := nonEmpty(in.ThumbnailPath); key != nil {
			cols["thumbnail_path"] = *key
			out.ReplacedThumbnailPath = replaced(current.ThumbnailPath, *key)
		}
		if len(cols) > 0 || in.TagNames != nil {
			cols["updated_at"] = now
		}
		if err := a.repos.Material.UpdateFields(dbc, current.ID, cols); err != nil {
			return err
		}

		// Tag replacement is destructive then additive.
		if in.TagNames != nil {
			if err := a.repos.MaterialTag.DeleteByMaterialIDs(dbc, []uint{current.ID}); err != nil {
				return err
			}
			if _, err := a.resolveTags(dbc, current.ID, *in.TagNames); err != nil {
				return err
			}
		}

		if _, err := a.repos.Statistics.Recompute(dbc, now); err != nil {
			return err
		}
		out.Material, err = a.snapshot(dbc, current.ID)
		return err
	})
	if err != nil {
		return domainagg.UpdateMaterialResult{MaterialID: in.MaterialID}, err
	}
	return out, nil
}

func (a *catalogAggregate) DeleteMaterial(ctx context.Context, in domainagg.DeleteMaterialInput) (domainagg.DeleteMaterialResult, error) {
	op := "catalog.soft_delete_material"
	if in.Permanent {
		op = "catalog.hard_delete_material"
	}
	var out domainagg.DeleteMaterialResult
	now := a.now(in.DeletedAt)

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		out = domainagg.DeleteMaterialResult{MaterialID: in.MaterialID, Permanent: in.Permanent}
		current, err := a.repos.Material.GetByIDForUpdate(dbc, in.MaterialID)
		if err != nil {
			return err
		}
		if current == nil {
			return NotFoundError(fmt.Sprintf("material %d not found", in.MaterialID))
		}

		if !in.Permanent {
			if current.IsActive {
				if err := a.repos.Material.UpdateFields(dbc, current.ID, map[string]interface{}{
					"is_active":  false,
					"updated_at": now,
				}); err != nil {
					return err
				}
			}
			_, err := a.repos.Statistics.Recompute(dbc, now)
			return err
		}

		ids := []uint{current.ID}
		if err := a.repos.MaterialTag.DeleteByMaterialIDs(dbc, ids); err != nil {
			return err
		}
		if err := a.repos.Rating.DeleteByMaterialIDs(dbc, ids); err != nil {
			return err
		}
		if err := a.repos.UserHistory.DeleteByMaterialIDs(dbc, ids); err != nil {
			return err
		}
		if err := a.repos.MaterialAccess.DeleteByMaterialIDs(dbc, ids); err != nil {
			return err
		}
		if err := a.repos.Material.FullDeleteByIDs(dbc, ids); err != nil {
			return err
		}
		if _, err := a.repos.Statistics.Recompute(dbc, now); err != nil {
			return err
		}
		out.FilePath = nonEmpty(current.FilePath)
		out.ThumbnailPath = nonEmpty(current.ThumbnailPath)
		return nil
	})
	if err != nil {
		return domainagg.DeleteMaterialResult{MaterialID: in.MaterialID, Permanent: in.Permanent}, err
	}
	return out, nil
}

func (a *catalogAggregate) RateMaterial(ctx context.Context, in domainagg.RateMaterialInput) (domainagg.RateMaterialResult, error) {
	const op = "catalog.rate_material"
	var out domainagg.RateMaterialResult
	now := a.now(in.RatedAt)

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		out = domainagg.RateMaterialResult{MaterialID: in.MaterialID}
		if !types.ValidRatingValue(in.Value) {
			return ValidationError(fmt.Sprintf("rating must be between %g and %g", types.MinRatingValue, types.MaxRatingValue))
		}
		if in.UserID == uuid.Nil {
			return ValidationError("user is required")
		}
		// The row lock orders concurrent raters of one material.
		m, err := a.repos.Material.GetByIDForUpdate(dbc, in.MaterialID)
		if err != nil {
			return err
		}
		if m == nil || !m.IsActive {
			return NotFoundError(fmt.Sprintf("material %d not found", in.MaterialID))
		}

		comment := in.Comment
		if comment != nil {
			trimmed := strings.TrimSpace(*comment)
			comment = &trimmed
		}
		if err := a.repos.Rating.Upsert(dbc, &types.Rating{
			MaterialID: m.ID,
			UserID:     in.UserID,
			Value:      in.Value,
			Comment:    comment,
		}); err != nil {
			return err
		}
		avg, count, err := a.repos.Rating.Aggregate(dbc, m.ID)
		if err != nil {
			return err
		}
		if err := a.repos.Material.SetRating(dbc, m.ID, avg, count); err != nil {
			return err
		}
		if _, err := a.repos.Statistics.Recompute(dbc, now); err != nil {
			return err
		}
		out.Rating = types.RatingSummary{Value: in.Value, Comment: comment, Average: avg, Count: count}
		return nil
	})
	return out, err
}

func (a *catalogAggregate) RecomputeStatistics(ctx context.Context, at time.Time) (*types.Statistics, error) {
	var out *types.Statistics
	err := executeWrite(ctx, a.deps, "catalog.recompute_statistics", func(dbc dbctx.Context) error {
		stats, err := a.repos.Statistics.Recompute(dbc, a.now(at))
		out = stats
		return err
	})
	return out, err
}

// snapshot reads the material as this transaction will commit it.
func (a *catalogAggregate) snapshot(dbc dbctx.Context, id uint) (*types.Material, error) {
	m, err := a.repos.Material.GetByID(dbc, id)
	if err != nil || m == nil {
		return m, err
	}
	tags, err := a.repos.Tag.ListByMaterialIDs(dbc, []uint{id})
	if err != nil {
		return nil, err
	}
	m.Tags = tags[id]
	if m.Tags == nil {
		m.Tags = []types.Tag{}
	}
	names, err := a.repos.Category.NamesByIDs(dbc, []uint{m.CategoryID})
	if err != nil {
		return nil, err
	}
	m.CategoryName = names[m.CategoryID]
	return m, nil
}

func (a *catalogAggregate) requireCategory(dbc dbctx.Context, id uint) error {
	c, err := a.repos.Category.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ReferenceError(fmt.Sprintf("category %d does not exist", id))
	}
	return nil
}

// resolveTags finds or creates each named tag and links it to the material.
func (a *catalogAggregate) resolveTags(dbc dbctx.Context, materialID uint, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := a.repos.Tag.FindOrCreate(dbc, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	if err := a.repos.MaterialTag.Link(dbc, materialID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func materialFromDraft(d types.MaterialDraft, now time.Time) *types.Material {
	publish := now
	if d.PublishDate != nil && !d.PublishDate.IsZero() {
		publish = d.PublishDate.UTC()
	}
	return &types.Material{
		Title:       strings.TrimSpace(d.Title),
		Type:        d.Type,
		CategoryID:  d.CategoryID,
		Description: d.Description,
		Author:      strings.TrimSpace(d.Author),
		Level:       d.Level,
		Duration:    strings.TrimSpace(d.Duration),
		Pages:       d.Pages,
		Lessons:     d.Lessons,
		PublishDate: publish,
		URL:         nonEmpty(d.URL),
		IsFeatured:  d.IsFeatured,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// replaced returns the old key when it differs from the new one.
func replaced(old *string, next string) *string {
	prev := nonEmpty(old)
	if prev == nil || *prev == next {
		return nil
	}
	return prev
}
