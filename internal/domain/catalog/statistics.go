package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// StatisticsRowID is the primary key of the single statistics row.
const StatisticsRowID uint = 1

type Statistics struct {
	ID                uint           `gorm:"primaryKey;autoIncrement:false" json:"-"`
	TotalMaterials    int64          `gorm:"column:total_materials;not null;default:0" json:"total_materials"`
	VideoContentHours float64        `gorm:"column:video_content_hours;type:double precision;not null;default:0" json:"video_content_hours"`
	TotalCourses      int64          `gorm:"column:total_courses;not null;default:0" json:"total_courses"`
	AverageRating     float64        `gorm:"column:average_rating;type:double precision;not null;default:0" json:"average_rating"`
	MaterialsByType   datatypes.JSON `gorm:"column:materials_by_type" json:"materials_by_type,omitempty"`
	LastCalculated    *time.Time     `gorm:"column:last_calculated" json:"last_calculated"`
}

func (Statistics) TableName() string { return "statistics" }
