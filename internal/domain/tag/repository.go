package tag

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context) ([]*Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Tag, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]*Tag, error)
	Import(ctx context.Context, tags []*Tag) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Tag, error) {
	var t Tag
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) ([]*Tag, error) {
	var tags []*Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *repository) GetBySlugs(ctx context.Context, slugs []string) ([]*Tag, error) {
	var tags []*Tag
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error
	return tags, err
}

// Import загружает справочник, молча пропуская уже существующие записи.
func (r *repository) Import(ctx context.Context, tags []*Tag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags)
	return int(result.RowsAffected), result.Error
}
