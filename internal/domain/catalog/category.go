package catalog

type Category struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Icon         string `gorm:"column:icon" json:"icon"`
	Description  string `gorm:"column:description;type:text" json:"description"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0;index" json:"display_order"`
}

func (Category) TableName() string { return "category" }
