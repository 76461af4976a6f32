package ingredient

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, namePrefix string) ([]*Ingredient, error)
	GetByID(ctx context.Context, id int64) (*Ingredient, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Ingredient, error)
	Import(ctx context.Context, items []*Ingredient) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// List возвращает продукты, отфильтрованные по началу названия
// (без учёта регистра), как istartswith в исходном API.
func (r *repository) List(ctx context.Context, namePrefix string) ([]*Ingredient, error) {
	var items []*Ingredient
	q := r.db.WithContext(ctx).Order("name ASC")
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Ingredient, error) {
	var item Ingredient
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) ([]*Ingredient, error) {
	var items []*Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// Import выполняет массовую загрузку справочника, пропуская дубликаты
// по (name, measurement_unit).
func (r *repository) Import(ctx context.Context, items []*Ingredient) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&items, 500)
	return int(result.RowsAffected), result.Error
}
