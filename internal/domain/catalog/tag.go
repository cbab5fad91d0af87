package catalog

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null;uniqueIndex:idx_tag_name" json:"name"`
}

func (Tag) TableName() string { return "tag" }

// MaterialTag links a material to a tag. It has no lifecycle of its own.
type MaterialTag struct {
	MaterialID uint `gorm:"column:material_id;primaryKey;autoIncrement:false" json:"material_id"`
	TagID      uint `gorm:"column:tag_id;primaryKey;autoIncrement:false;index" json:"tag_id"`
}

func (MaterialTag) TableName() string { return "material_tag" }
