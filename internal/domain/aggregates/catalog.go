package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/materials-catalog/internal/domain/catalog"
)

var CatalogAggregateContract = Contract{
	Name:             "Catalog.MaterialAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns material rows with their tag links, rating aggregate and the statistics row.",
}

// CatalogAggregate owns every write that touches a material together with the
// rows derived from it. Each method is one transaction.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeReference, CodeNotFound, CodeConflict, CodeRetryable,
// CodeTransaction, CodeInternal.
type CatalogAggregate interface {
	Aggregate

	// CreateMaterial inserts the material, resolves and links its tags, then
	// recomputes statistics.
	CreateMaterial(ctx context.Context, in CreateMaterialInput) (CreateMaterialResult, error)

	// UpdateMaterial applies a patch. A non-nil TagNames replaces the tag set.
	UpdateMaterial(ctx context.Context, in UpdateMaterialInput) (UpdateMaterialResult, error)

	// DeleteMaterial deactivates the material, or removes it with every dependent row.
	DeleteMaterial(ctx context.Context, in DeleteMaterialInput) (DeleteMaterialResult, error)

	// RateMaterial upserts the caller's rating and refreshes the material aggregate.
	RateMaterial(ctx context.Context, in RateMaterialInput) (RateMaterialResult, error)

	// RecomputeStatistics rebuilds the statistics row from the active materials.
	RecomputeStatistics(ctx context.Context, at time.Time) (*catalog.Statistics, error)
}

type CreateMaterialInput struct {
	Draft         catalog.MaterialDraft
	TagNames      []string
	FilePath      *string
	ThumbnailPath *string
	CreatedAt     time.Time
}

type CreateMaterialResult struct {
	MaterialID uint
	TagIDs     []uint
	// Material is the row as committed, with tags and category name.
	Material *catalog.Material
}

type UpdateMaterialInput struct {
	MaterialID    uint
	Patch         catalog.MaterialPatch
	TagNames      *[]string
	FilePath      *string
	ThumbnailPath *string
	UpdatedAt     time.Time
}

type UpdateMaterialResult struct {
	MaterialID uint
	Material   *catalog.Material
	// Keys that were referenced before the update and no longer are.
	ReplacedFilePath      *string
	ReplacedThumbnailPath *string
}

type DeleteMaterialInput struct {
	MaterialID uint
	Permanent  bool
	DeletedAt  time.Time
}

type DeleteMaterialResult struct {
	MaterialID uint
	Permanent  bool
	// Asset keys released by a permanent delete.
	FilePath      *string
	ThumbnailPath *string
}

type RateMaterialInput struct {
	MaterialID uint
	UserID     uuid.UUID
	Value      float64
	Comment    *string
	RatedAt    time.Time
}

type RateMaterialResult struct {
	MaterialID uint
	Rating     catalog.RatingSummary
}
