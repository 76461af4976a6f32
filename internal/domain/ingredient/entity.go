package ingredient

// Ingredient — справочник продуктов. Пара (name, measurement_unit) уникальна:
// "мука, г" и "мука, кг" — разные записи.
type Ingredient struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_name_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string { return "ingredients" }
