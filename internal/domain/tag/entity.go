package tag

// Tag — неизменяемый справочник тегов рецептов.
type Tag struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:32;uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string { return "tags" }
