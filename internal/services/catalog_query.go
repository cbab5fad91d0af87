package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/repos"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

const (
	DefaultFeaturedLimit = 6
	MaxFeaturedLimit     = 50
)

type CatalogQueryService interface {
	List(ctx context.Context, filter types.Filter, page types.Page) (*types.MaterialPage, error)
	// Get returns an active material and counts the view. An authenticated caller's
	// history row is touched as well.
	Get(ctx context.Context, id uint) (*types.Material, error)
	// Lookup returns a hydrated material in any state without side effects.
	Lookup(ctx context.Context, id uint) (*types.Material, error)
	Categories(ctx context.Context) ([]*types.Category, error)
	Tags(ctx context.Context) ([]*types.Tag, error)
	Statistics(ctx context.Context) (*types.Statistics, error)
	Featured(ctx context.Context, limit int) ([]*types.Material, error)
}

type catalogQueryService struct {
	db              *gorm.DB
	log             *logger.Logger
	repos           repos.Set
	agg             domainagg.CatalogAggregate
	cache           cache.Cache
	metrics         *observability.Metrics
	defaultPageSize int
	now             func() time.Time
}

func NewCatalogQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	r repos.Set,
	agg domainagg.CatalogAggregate,
	c cache.Cache,
	metrics *observability.Metrics,
	defaultPageSize int,
) CatalogQueryService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &catalogQueryService{
		db:              db,
		log:             baseLog.With("service", "CatalogQueryService"),
		repos:           r,
		agg:             agg,
		cache:           c,
		metrics:         metrics,
		defaultPageSize: defaultPageSize,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogQueryService) List(ctx context.Context, filter types.Filter, page types.Page) (*types.MaterialPage, error) {
	const op = "catalog.list_materials"
	filter = filter.Normalized()
	if !filter.DateRange.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown date range %q", filter.DateRange), nil)
	}
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown level %q", filter.Level), nil)
	}
	page = page.Clamp(s.defaultPageSize)
	now := s.now()

	var (
		items []*types.Material
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repos.Material.List(dbctx.Context{Ctx: gctx}, filter, page, now)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repos.Material.Count(dbctx.Context{Ctx: gctx}, filter, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	if err := s.hydrate(dbctx.Context{Ctx: ctx}, items); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if items == nil {
		items = []*types.Material{}
	}
	return &types.MaterialPage{Items: items, Pagination: types.NewPagination(page, total)}, nil
}

func (s *catalogQueryService) Get(ctx context.Context, id uint) (*types.Material, error) {
	const op = "catalog.get_material"
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.repos.Material.GetActiveByID(dbc, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "material not found", nil)
	}

	bumped, err := s.repos.Material.IncrementCounter(dbc, m.ID, types.TrackView.Column())
	if err != nil {
		s.log.Warn("view count not recorded", "material_id", m.ID, "error", err)
	} else if bumped {
		m.ViewCount++
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		if err := s.recordView(ctx, rd.UserID, m.ID); err != nil {
			s.log.Warn("view history not recorded", "material_id", m.ID, "user_id", rd.UserID, "error", err)
		}
	}

	if err := s.hydrate(dbc, []*types.Material{m}); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return m, nil
}

// recordView touches the caller's history row while holding a share lock on the
// material. A material deleted in the meantime gets no row.
func (s *catalogQueryService) recordView(ctx context.Context, userID uuid.UUID, materialID uint) error {
	return inTx(ctx, s.db, func(dbc dbctx.Context) error {
		live, err := s.repos.Material.GetByIDForShare(dbc, materialID)
		if err != nil {
			return err
		}
		if live == nil || !live.IsActive {
			return nil
		}
		return s.repos.UserHistory.Touch(dbc, userID, materialID, s.now())
	})
}

func (s *catalogQueryService) Lookup(ctx context.Context, id uint) (*types.Material, error) {
	const op = "catalog.lookup_material"
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.repos.Material.GetByID(dbc, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "material not found", nil)
	}
	if err := s.hydrate(dbc, []*types.Material{m}); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return m, nil
}

func (s *catalogQueryService) Categories(ctx context.Context) ([]*types.Category, error) {
	var out []*types.Category
	slot, hit := s.cached(ctx, cache.KeyCategories, &out)
	if hit {
		return out, nil
	}
	out, err := s.repos.Category.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "catalog.list_categories", err)
	}
	if out == nil {
		out = []*types.Category{}
	}
	s.store(ctx, slot, out)
	return out, nil
}

func (s *catalogQueryService) Tags(ctx context.Context) ([]*types.Tag, error) {
	var out []*types.Tag
	slot, hit := s.cached(ctx, cache.KeyTags, &out)
	if hit {
		return out, nil
	}
	out, err := s.repos.Tag.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "catalog.list_tags", err)
	}
	if out == nil {
		out = []*types.Tag{}
	}
	s.store(ctx, slot, out)
	return out, nil
}

// Statistics returns the materialized row, computing it once if it was never calculated.
func (s *catalogQueryService) Statistics(ctx context.Context) (*types.Statistics, error) {
	const op = "catalog.get_statistics"
	var cached types.Statistics
	slot, hit := s.cached(ctx, cache.KeyStatistics, &cached)
	if hit {
		return &cached, nil
	}
	stats, err := s.repos.Statistics.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if stats == nil || stats.LastCalculated == nil {
		if s.agg == nil {
			return nil, domainagg.NewError(domainagg.CodeInternal, op, "statistics unavailable", nil)
		}
		stats, err = s.agg.RecomputeStatistics(ctx, s.now())
		if err != nil {
			return nil, err
		}
	}
	s.store(ctx, slot, stats)
	return stats, nil
}

// Featured serves any limit from one cached list of the maximum size.
func (s *catalogQueryService) Featured(ctx context.Context, limit int) ([]*types.Material, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}
	var all []*types.Material
	if slot, hit := s.cached(ctx, cache.KeyFeatured, &all); !hit {
		dbc := dbctx.Context{Ctx: ctx}
		var err error
		all, err = s.repos.Material.ListFeatured(dbc, MaxFeaturedLimit)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, "catalog.list_featured", err)
		}
		if err := s.hydrate(dbc, all); err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, "catalog.list_featured", err)
		}
		if all == nil {
			all = []*types.Material{}
		}
		s.store(ctx, slot, all)
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// hydrate fills Tags and CategoryName for each material.
func (s *catalogQueryService) hydrate(dbc dbctx.Context, items []*types.Material) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(items))
	catIDs := make([]uint, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
		catIDs = append(catIDs, m.CategoryID)
	}
	tags, err := s.repos.Tag.ListByMaterialIDs(dbc, ids)
	if err != nil {
		return err
	}
	names, err := s.repos.Category.NamesByIDs(dbc, catIDs)
	if err != nil {
		return err
	}
	for _, m := range items {
		m.Tags = tags[m.ID]
		if m.Tags == nil {
			m.Tags = []types.Tag{}
		}
		m.CategoryName = names[m.CategoryID]
	}
	return nil
}

// cacheSlot is a family key pinned to the generation sampled before the
// database read. An empty key means the cache is skipped for this request.
type cacheSlot string

func (s *catalogQueryService) cached(ctx context.Context, family string, dst interface{}) (cacheSlot, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("cache generation unavailable", "key", family, "error", err)
		s.metrics.IncCacheLookup(family, false)
		return "", false
	}
	slot := cacheSlot(cache.Versioned(family, gen))
	hit, err := s.cache.Get(ctx, string(slot), dst)
	if err != nil {
		s.log.Warn("cache read failed", "key", family, "error", err)
		hit = false
	}
	s.metrics.IncCacheLookup(family, hit)
	return slot, hit
}

func (s *catalogQueryService) store(ctx context.Context, slot cacheSlot, v interface{}) {
	if slot == "" {
		return
	}
	if err := s.cache.Set(ctx, string(slot), v); err != nil {
		s.log.Warn("cache write failed", "key", string(slot), "error", err)
	}
}
