package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/gcp"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type CreateMaterialRequest struct {
	Draft    types.MaterialDraft
	TagNames []string
	Assets   types.MaterialAssets
}

type UpdateMaterialRequest struct {
	MaterialID uint
	Patch      types.MaterialPatch
	// TagNames replaces the tag set when non-nil. An empty slice clears it.
	TagNames *[]string
	Assets   types.MaterialAssets
}

// CatalogWriteService coordinates catalog writes with the asset store: uploads happen
// before the transaction and are compensated if it does not commit, and replaced or
// released objects are deleted only after commit.
type CatalogWriteService interface {
	Create(ctx context.Context, req CreateMaterialRequest) (*types.Material, error)
	Update(ctx context.Context, req UpdateMaterialRequest) (*types.Material, error)
	Delete(ctx context.Context, materialID uint, permanently bool) error
	Rate(ctx context.Context, materialID uint, userID uuid.UUID, value float64, comment *string) (types.RatingSummary, error)
	RecomputeStatistics(ctx context.Context) (*types.Statistics, error)
}

type catalogWriteService struct {
	log     *logger.Logger
	agg     domainagg.CatalogAggregate
	bucket  gcp.BucketService
	query   CatalogQueryService
	cache   cache.Cache
	metrics *observability.Metrics
	now     func() time.Time
}

func NewCatalogWriteService(
	baseLog *logger.Logger,
	agg domainagg.CatalogAggregate,
	bucket gcp.BucketService,
	query CatalogQueryService,
	c cache.Cache,
	metrics *observability.Metrics,
) CatalogWriteService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &catalogWriteService{
		log:     baseLog.With("service", "CatalogWriteService"),
		agg:     agg,
		bucket:  bucket,
		query:   query,
		cache:   c,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// storedObject names one object in the asset store.
type storedObject struct {
	Category gcp.BucketCategory
	Key      string
}

func (s *catalogWriteService) Create(ctx context.Context, req CreateMaterialRequest) (*types.Material, error) {
	const op = "catalog.create_material"
	// Reject before touching the asset store.
	if problems := req.Draft.Problems(); len(problems) > 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, strings.Join(problems, "; "), nil)
	}

	ledger := newCompensationLedger(s.log, s.bucket, s.metrics, op)
	filePath, thumbPath, err := s.storeAssets(ctx, op, req.Assets, ledger)
	if err != nil {
		ledger.Compensate(ctx)
		return nil, err
	}

	res, err := s.agg.CreateMaterial(ctx, domainagg.CreateMaterialInput{
		Draft:         req.Draft,
		TagNames:      req.TagNames,
		FilePath:      filePath,
		ThumbnailPath: thumbPath,
		CreatedAt:     s.now(),
	})
	if err != nil {
		ledger.Compensate(ctx)
		return nil, err
	}

	s.invalidate(ctx, op)
	s.log.Info("material created", "material_id", res.MaterialID, "tags", len(res.TagIDs))
	return s.committed(ctx, op, res.MaterialID, res.Material), nil
}

func (s *catalogWriteService) Update(ctx context.Context, req UpdateMaterialRequest) (*types.Material, error) {
	const op = "catalog.update_material"
	if problems := req.Patch.Problems(); len(problems) > 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, strings.Join(problems, "; "), nil)
	}

	ledger := newCompensationLedger(s.log, s.bucket, s.metrics, op)
	filePath, thumbPath, err := s.storeAssets(ctx, op, req.Assets, ledger)
	if err != nil {
		ledger.Compensate(ctx)
		return nil, err
	}

	res, err := s.agg.UpdateMaterial(ctx, domainagg.UpdateMaterialInput{
		MaterialID:    req.MaterialID,
		Patch:         req.Patch,
		TagNames:      req.TagNames,
		FilePath:      filePath,
		ThumbnailPath: thumbPath,
		UpdatedAt:     s.now(),
	})
	if err != nil {
		ledger.Compensate(ctx)
		return nil, err
	}

	var stale []storedObject
	if res.ReplacedFilePath != nil {
		stale = append(stale, storedObject{Category: gcp.BucketCategoryMaterialFile, Key: *res.ReplacedFilePath})
	}
	if res.ReplacedThumbnailPath != nil {
		stale = append(stale, storedObject{Category: gcp.BucketCategoryThumbnail, Key: *res.ReplacedThumbnailPath})
	}
	s.releaseAssets(ctx, op, stale)
	s.invalidate(ctx, op)
	return s.committed(ctx, op, res.MaterialID, res.Material), nil
}

func (s *catalogWriteService) Delete(ctx context.Context, materialID uint, permanently bool) error {
	op := "catalog.soft_delete_material"
	if permanently {
		op = "catalog.hard_delete_material"
	}
	res, err := s.agg.DeleteMaterial(ctx, domainagg.DeleteMaterialInput{
		MaterialID: materialID,
		Permanent:  permanently,
		DeletedAt:  s.now(),
	})
	if err != nil {
		return err
	}
	if permanently {
		var released []storedObject
		if res.FilePath != nil {
			released = append(released, storedObject{Category: gcp.BucketCategoryMaterialFile, Key: *res.FilePath})
		}
		if res.ThumbnailPath != nil {
			released = append(released, storedObject{Category: gcp.BucketCategoryThumbnail, Key: *res.ThumbnailPath})
		}
		s.releaseAssets(ctx, op, released)
	}
	s.invalidate(ctx, op)
	s.log.Info("material deleted", "material_id", materialID, "permanently", permanently)
	return nil
}

func (s *catalogWriteService) Rate(ctx context.Context, materialID uint, userID uuid.UUID, value float64, comment *string) (types.RatingSummary, error) {
	res, err := s.agg.RateMaterial(ctx, domainagg.RateMaterialInput{
		MaterialID: materialID,
		UserID:     userID,
		Value:      value,
		Comment:    comment,
		RatedAt:    s.now(),
	})
	if err != nil {
		return types.RatingSummary{}, err
	}
	s.invalidate(ctx, "catalog.rate_material")
	return res.Rating, nil
}

func (s *catalogWriteService) RecomputeStatistics(ctx context.Context) (*types.Statistics, error) {
	stats, err := s.agg.RecomputeStatistics(ctx, s.now())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "catalog.recompute_statistics")
	return stats, nil
}

// committed reloads the written material for the response. The write already
// committed, so a failed reload falls back to the row the transaction returned.
func (s *catalogWriteService) committed(ctx context.Context, op string, id uint, fallback *types.Material) *types.Material {
	m, err := s.query.Lookup(ctx, id)
	if err != nil {
		s.log.Warn("reload after commit failed", "op", op, "material_id", id, "error", err)
		return fallback
	}
	return m
}

// storeAssets uploads the new file and thumbnail. Each key is recorded in the ledger
// before its upload starts, so a half-written object is compensated as well.
func (s *catalogWriteService) storeAssets(ctx context.Context, op string, assets types.MaterialAssets, ledger *compensationLedger) (filePath, thumbPath *string, err error) {
	if assets.Empty() {
		return nil, nil, nil
	}
	if assets.File != nil {
		key, err := s.storeAsset(ctx, op, gcp.BucketCategoryMaterialFile, assets.File, ledger)
		if err != nil {
			return nil, nil, err
		}
		filePath = &key
	}
	if assets.Thumbnail != nil {
		key, err := s.storeAsset(ctx, op, gcp.BucketCategoryThumbnail, assets.Thumbnail, ledger)
		if err != nil {
			return nil, nil, err
		}
		thumbPath = &key
	}
	return filePath, thumbPath, nil
}

func (s *catalogWriteService) storeAsset(ctx context.Context, op string, category gcp.BucketCategory, up *types.AssetUpload, ledger *compensationLedger) (string, error) {
	if up.Open == nil {
		return "", domainagg.NewError(domainagg.CodeValidation, op, string(category)+" upload is empty", nil)
	}
	rc, err := up.Open()
	if err != nil {
		return "", domainagg.NewError(domainagg.CodeValidation, op, "cannot read "+string(category)+" upload", err)
	}
	defer rc.Close()

	key := gcp.NewObjectKey(category, up.Filename)
	ledger.Append(category, key)
	err = s.bucket.UploadFile(ctx, category, key, rc, up.ContentType)
	s.metrics.IncAsset("upload", err == nil)
	if err != nil {
		s.log.Warn("asset upload failed", "op", op, "category", string(category), "key", key, "error", err)
		return "", domainagg.NewError(domainagg.CodeStorage, op, "asset upload failed", err)
	}
	return key, nil
}

// releaseAssets deletes objects no committed row references any more. Failures are
// logged; the write already committed.
func (s *catalogWriteService) releaseAssets(ctx context.Context, op string, objs []storedObject) {
	if len(objs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, o := range objs {
		g.Go(func() error {
			err := s.bucket.DeleteFile(ctx, o.Category, o.Key)
			if gcp.IsNotFound(err) {
				err = nil
			}
			s.metrics.IncAsset("cleanup", err == nil)
			if err != nil {
				s.log.Warn("post-commit asset delete failed",
					"op", op,
					"category", string(o.Category),
					"key", o.Key,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *catalogWriteService) invalidate(ctx context.Context, op string) {
	// Entries cached before the commit stay reachable until their TTL if this fails.
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("cache invalidation failed", "op", op, "error", err)
	}
}
