package materials

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type StatisticsRepo interface {
	Get(dbc dbctx.Context) (*types.Statistics, error)
	Recompute(dbc dbctx.Context, now time.Time) (*types.Statistics, error)
}

type statisticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatisticsRepo(db *gorm.DB, baseLog *logger.Logger) StatisticsRepo {
	repoLog := baseLog.With("repo", "StatisticsRepo")
	return &statisticsRepo{db: db, log: repoLog}
}

// Get returns the singleton row, or nil if it has never been written.
func (r *statisticsRepo) Get(dbc dbctx.Context) (*types.Statistics, error) {
	var s types.Statistics
	if err := dbc.DB(r.db).Where("id = ?", types.StatisticsRowID).Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Recompute derives every statistic from the active materials visible to dbc
// and overwrites the singleton row.
func (r *statisticsRepo) Recompute(dbc dbctx.Context, now time.Time) (*types.Statistics, error) {
	db := dbc.DB(r.db)

	var byType []struct {
		Type  string
		Total int64
	}
	if err := db.Model(&types.Material{}).
		Select("type AS type, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}

	var rated struct {
		Average float64
	}
	if err := db.Model(&types.Material{}).
		Select("COALESCE(AVG(rating), 0) AS average").
		Where("is_active = ? AND rating > 0", true).
		Scan(&rated).Error; err != nil {
		return nil, err
	}

	var durations []struct {
		Type     string
		Duration string
	}
	videoTypes := make([]string, 0, 2)
	for _, t := range types.MaterialTypes {
		if t.CountsTowardVideoHours() {
			videoTypes = append(videoTypes, string(t))
		}
	}
	if err := db.Model(&types.Material{}).
		Select("type, duration").
		Where("is_active = ? AND type IN ?", true, videoTypes).
		Scan(&durations).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(byType))
	var total, courses int64
	for _, row := range byType {
		counts[row.Type] = row.Total
		total += row.Total
		if types.MaterialType(row.Type) == types.TypeCourse {
			courses = row.Total
		}
	}
	var hours float64
	for _, d := range durations {
		hours += types.ParseDurationHours(d.Duration)
	}

	rawCounts, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	calculated := now.UTC()
	stats := &types.Statistics{
		ID:                types.StatisticsRowID,
		TotalMaterials:    total,
		VideoContentHours: round2(hours),
		TotalCourses:      courses,
		AverageRating:     round2(rated.Average),
		MaterialsByType:   datatypes.JSON(rawCounts),
		LastCalculated:    &calculated,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
