package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/repos"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/gcp"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type AssetKind string

const (
	AssetFile      AssetKind = "file"
	AssetThumbnail AssetKind = "thumbnail"
)

type ProgressInput struct {
	UserID     uuid.UUID
	MaterialID uint
	Percentage float64
	Position   int64
	Completed  bool
}

// AssetStream is an open stored object. The caller closes Body.
type AssetStream struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// EngagementService records per-user and per-material activity that does not touch
// derived catalog state.
type EngagementService interface {
	Track(ctx context.Context, materialID uint, action types.TrackAction) error
	SaveProgress(ctx context.Context, in ProgressInput) (*types.UserHistory, error)
	GetProgress(ctx context.Context, userID uuid.UUID, materialID uint) (*types.UserHistory, error)
	OpenAsset(ctx context.Context, materialID uint, kind AssetKind) (*AssetStream, error)
}

type engagementService struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   repos.Set
	bucket  gcp.BucketService
	metrics *observability.Metrics
	now     func() time.Time
}

func NewEngagementService(
	db *gorm.DB,
	baseLog *logger.Logger,
	r repos.Set,
	bucket gcp.BucketService,
	metrics *observability.Metrics,
) EngagementService {
	return &engagementService{
		db:      db,
		log:     baseLog.With("service", "EngagementService"),
		repos:   r,
		bucket:  bucket,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *engagementService) Track(ctx context.Context, materialID uint, action types.TrackAction) error {
	const op = "catalog.track"
	if !action.Valid() {
		return domainagg.NewError(domainagg.CodeValidation, op, "action must be view or download", nil)
	}
	ok, err := s.repos.Material.IncrementCounter(dbctx.Context{Ctx: ctx}, materialID, action.Column())
	if err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeNotFound, op, "material not found", nil)
	}
	return nil
}

func (s *engagementService) SaveProgress(ctx context.Context, in ProgressInput) (*types.UserHistory, error) {
	const op = "catalog.save_progress"
	if in.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "authentication required", nil)
	}
	if in.Percentage < 0 || in.Percentage > 100 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "percentage must be between 0 and 100", nil)
	}
	if in.Position < 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "position cannot be negative", nil)
	}

	var stored *types.UserHistory
	err := inTx(ctx, s.db, func(dbc dbctx.Context) error {
		// The check and the upsert share one lock so a hard delete cannot land between them.
		m, err := s.repos.Material.GetByIDForShare(dbc, in.MaterialID)
		if err != nil {
			return err
		}
		if m == nil || !m.IsActive {
			return domainagg.NewError(domainagg.CodeNotFound, op, "material not found", nil)
		}
		if err := s.repos.UserHistory.UpsertProgress(dbc, &types.UserHistory{
			UserID:             in.UserID,
			MaterialID:         m.ID,
			ProgressPercentage: in.Percentage,
			LastPosition:       in.Position,
			IsCompleted:        in.Completed,
			LastAccessed:       s.now(),
		}); err != nil {
			return err
		}
		stored, err = s.repos.UserHistory.GetByUserAndMaterial(dbc, in.UserID, m.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return domainagg.NewError(domainagg.CodeInternal, op, "progress not stored", nil)
		}
		return nil
	})
	if err != nil {
		if domainagg.CodeOf(err) != "" {
			return nil, err
		}
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return stored, nil
}

// inTx runs fn inside one transaction on db.
func inTx(ctx context.Context, db *gorm.DB, fn func(dbc dbctx.Context) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func (s *engagementService) GetProgress(ctx context.Context, userID uuid.UUID, materialID uint) (*types.UserHistory, error) {
	const op = "catalog.get_progress"
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "authentication required", nil)
	}
	row, err := s.repos.UserHistory.GetByUserAndMaterial(dbctx.Context{Ctx: ctx}, userID, materialID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "no progress recorded", nil)
	}
	return row, nil
}

// OpenAsset streams the stored file or thumbnail of an active material. Opening the
// file counts as a download.
func (s *engagementService) OpenAsset(ctx context.Context, materialID uint, kind AssetKind) (*AssetStream, error) {
	op := fmt.Sprintf("catalog.open_%s", kind)
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.repos.Material.GetActiveByID(dbc, materialID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "material not found", nil)
	}

	var (
		key      *string
		category gcp.BucketCategory
	)
	switch kind {
	case AssetFile:
		key, category = m.FilePath, gcp.BucketCategoryMaterialFile
	case AssetThumbnail:
		key, category = m.ThumbnailPath, gcp.BucketCategoryThumbnail
	default:
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "unknown asset kind", nil)
	}
	if key == nil || *key == "" {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "material has no "+string(kind), nil)
	}

	body, err := s.bucket.DownloadFile(ctx, category, *key)
	if err != nil {
		if gcp.IsNotFound(err) {
			s.log.Warn("referenced asset missing", "material_id", m.ID, "key", *key)
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, string(kind)+" not found", err)
		}
		return nil, domainagg.Wrap(domainagg.CodeStorage, op, err)
	}
	if kind == AssetFile {
		if _, err := s.repos.Material.IncrementCounter(dbc, m.ID, types.TrackDownload.Column()); err != nil {
			s.log.Warn("download count not recorded", "material_id", m.ID, "error", err)
		}
	}
	return &AssetStream{
		Body:        body,
		ContentType: gcp.ContentTypeForKey(*key),
		Filename:    path.Base(*key),
	}, nil
}
