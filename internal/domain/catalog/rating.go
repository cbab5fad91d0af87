package catalog

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRatingValue = 0.0
	MaxRatingValue = 5.0
)

type Rating struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;uniqueIndex:idx_rating_material_user,priority:1" json:"material_id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_rating_material_user,priority:2" json:"user_id"`
	Value      float64   `gorm:"column:value;type:double precision;not null" json:"value"`
	Comment    *string   `gorm:"column:comment;type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Rating) TableName() string { return "rating" }

func ValidRatingValue(v float64) bool {
	return v >= MinRatingValue && v <= MaxRatingValue
}

// RatingSummary is the aggregate exposed after a rating write.
type RatingSummary struct {
	Value   float64 `json:"value"`
	Comment *string `json:"comment"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
