package catalog

import "time"

type Material struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string        `gorm:"column:title;not null" json:"title"`
	Type          MaterialType  `gorm:"column:type;type:varchar(32);not null;index" json:"type"`
	CategoryID    uint          `gorm:"column:category_id;not null;index" json:"category_id"`
	Description   string        `gorm:"column:description;type:text;not null" json:"description"`
	Author        string        `gorm:"column:author;not null" json:"author"`
	Level         MaterialLevel `gorm:"column:level;type:varchar(32);not null;index" json:"level"`
	Duration      string        `gorm:"column:duration" json:"duration"`
	Pages         *int          `gorm:"column:pages" json:"pages,omitempty"`
	Lessons       *int          `gorm:"column:lessons" json:"lessons,omitempty"`
	PublishDate   time.Time     `gorm:"column:publish_date;not null;index" json:"publish_date"`
	FilePath      *string       `gorm:"column:file_path" json:"file_path,omitempty"`
	ThumbnailPath *string       `gorm:"column:thumbnail_path" json:"thumbnail_path,omitempty"`
	URL           *string       `gorm:"column:url" json:"url,omitempty"`
	ViewCount     int64         `gorm:"column:view_count;not null;default:0" json:"view_count"`
	DownloadCount int64         `gorm:"column:download_count;not null;default:0" json:"download_count"`
	Rating        float64       `gorm:"column:rating;type:double precision;not null;default:0" json:"rating"`
	RatingCount   int64         `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	IsFeatured    bool          `gorm:"column:is_featured;not null;default:false;index" json:"is_featured"`
	IsActive      bool          `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	CategoryName string `gorm:"-" json:"category_name,omitempty"`
	Tags         []Tag  `gorm:"-" json:"tags"`
}

func (Material) TableName() string { return "material" }
