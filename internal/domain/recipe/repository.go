package recipe

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodgram/internal/domain/tag"
)

type Filter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64 // 0 = фильтр выключен
	InCartOf    int64
	Page        int
	PerPage     int
}

type Repository interface {
	Create(ctx context.Context, r *Recipe, tags []tag.Tag, items []RecipeIngredient) error
	Update(ctx context.Context, r *Recipe, tags []tag.Tag, items []RecipeIngredient) error
	GetByID(ctx context.Context, id int64) (*Recipe, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)

	AddRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) error
	RemoveRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) error
	HasRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) (bool, error)

	AssignShortLink(ctx context.Context, recipeID int64, code string) (bool, error)
	FindByShortLink(ctx context.Context, code string) (*Recipe, error)

	ShoppingList(ctx context.Context, userID int64) ([]ShoppingListItem, error)
	CartRecipes(ctx context.Context, userID int64) ([]*Recipe, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create пишет рецепт, его теги и продукты одной транзакцией:
// частично собранный рецепт снаружи не виден.
func (r *repository) Create(ctx context.Context, rec *Recipe, tags []tag.Tag, items []RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Create(rec).Error; err != nil {
			return err
		}
		if err := tx.Model(rec).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		for i := range items {
			items[i].RecipeID = rec.ID
		}
		return tx.Create(&items).Error
	})
}

// Update заменяет строки продуктов целиком (delete-all + bulk insert)
// и переназначает набор тегов; diff не вычисляется.
func (r *repository) Update(ctx context.Context, rec *Recipe, tags []tag.Tag, items []RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Recipe{ID: rec.ID}).
			Select("name", "text", "image_url", "cooking_time").
			Updates(map[string]any{
				"name":         rec.Name,
				"text":         rec.Text,
				"image_url":    rec.ImageURL,
				"cooking_time": rec.CookingTime,
			}).Error
		if err != nil {
			return err
		}
		if err := tx.Model(rec).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", rec.ID).Delete(&RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].RecipeID = rec.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Recipe, error) {
	var rec Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&UserRecipeRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&Recipe{})

	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", relationSubquery(r.db, f.FavoritedBy, KindFavorite))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", relationSubquery(r.db, f.InCartOf, KindCart))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []*Recipe
	err := q.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("pub_date DESC, id DESC").
		Limit(f.PerPage).
		Offset((f.Page - 1) * f.PerPage).
		Find(&recipes).Error
	return recipes, total, err
}

func relationSubquery(db *gorm.DB, userID int64, kind RelationKind) *gorm.DB {
	return db.
		Table("user_recipe_relations").
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, kind)
}

func (r *repository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*Recipe, error) {
	var recipes []*Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *repository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// AddRelation намеренно НЕ идемпотентна: повторное добавление — Conflict.
// Уникальный индекс хранилища — последняя линия обороны от гонок.
func (r *repository) AddRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) error {
	rel := &UserRecipeRelation{
		UserID:   userID,
		RecipeID: recipeID,
		Kind:     kind,
	}
	err := r.db.WithContext(ctx).Create(rel).Error
	if err != nil && isUniqueViolation(err) {
		return ErrRelationExists
	}
	return err
}

func (r *repository) RemoveRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Delete(&UserRecipeRelation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRelationNotFound
	}
	return nil
}

func (r *repository) HasRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserRecipeRelation{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Count(&count).Error
	return count > 0, err
}

// AssignShortLink присваивает код только если его ещё нет: условие
// short_link IS NULL делает назначение идемпотентным под гонкой.
// false означает, что строка не изменилась (код уже назначен другим запросом).
func (r *repository) AssignShortLink(ctx context.Context, recipeID int64, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ? AND short_link IS NULL", recipeID).
		Update("short_link", code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindByShortLink(ctx context.Context, code string) (*Recipe, error) {
	var rec Recipe
	err := r.db.WithContext(ctx).Where("short_link = ?", code).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShortLinkNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ShoppingList агрегирует продукты всех рецептов в корзине пользователя:
// группировка по (название, единица измерения), суммирование количества,
// сортировка по названию.
func (r *repository) ShoppingList(ctx context.Context, userID int64) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN user_recipe_relations rel ON rel.recipe_id = recipe_ingredients.recipe_id").
		Where("rel.user_id = ? AND rel.kind = ?", userID, KindCart).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	return items, err
}

// CartRecipes возвращает рецепты, из которых собран список покупок.
func (r *repository) CartRecipes(ctx context.Context, userID int64) ([]*Recipe, error) {
	var recipes []*Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("recipes.id IN (?)", relationSubquery(r.db, userID, KindCart)).
		Order("name ASC").
		Find(&recipes).Error
	return recipes, err
}
