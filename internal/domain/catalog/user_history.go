package catalog

import (
	"time"

	"github.com/google/uuid"
)

type UserHistory struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_history_user_material,priority:1" json:"user_id"`
	MaterialID         uint      `gorm:"column:material_id;not null;uniqueIndex:idx_user_history_user_material,priority:2;index" json:"material_id"`
	ProgressPercentage float64   `gorm:"column:progress_percentage;type:double precision;not null;default:0" json:"progress_percentage"`
	LastPosition       int64     `gorm:"column:last_position;not null;default:0" json:"last_position"`
	IsCompleted        bool      `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	LastAccessed       time.Time `gorm:"column:last_accessed;not null" json:"last_accessed"`
}

func (UserHistory) TableName() string { return "user_history" }

// MaterialAccess restricts a material to a role. Rows are removed with the material.
type MaterialAccess struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;index" json:"material_id"`
	Role       string    `gorm:"column:role;not null" json:"role"`
	GrantedAt  time.Time `gorm:"column:granted_at;not null" json:"granted_at"`
}

func (MaterialAccess) TableName() string { return "material_access" }
