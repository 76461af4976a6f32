package recipe

import (
	"time"

	"foodgram/internal/domain/ingredient"
	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/user"
)

// Recipe — опубликованный рецепт. Автор обязателен, рецепты удаляются
// каскадно вместе с автором. short_link назначается лениво и навсегда.
type Recipe struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	AuthorID    int64      `gorm:"not null;index" json:"-"`
	Author      *user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string     `gorm:"size:256;not null" json:"name"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	ImageURL    string     `gorm:"not null" json:"image"`
	CookingTime int        `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	ShortLink   *string    `gorm:"size:32;uniqueIndex" json:"-"`
	PubDate     time.Time  `gorm:"autoCreateTime;index" json:"pub_date"`

	Tags        []tag.Tag          `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"-"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient — количество одного продукта в одном рецепте.
// Пара (recipe, ingredient) уникальна; при обновлении рецепта строки
// удаляются и создаются заново целиком.
type RecipeIngredient struct {
	ID           int64                  `gorm:"primaryKey" json:"-"`
	RecipeID     int64                  `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID int64                  `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Amount       int                    `gorm:"not null;check:amount >= 1" json:"amount"`
	Ingredient   *ingredient.Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// RelationKind различает "избранное" и "корзину" в общей таблице связей
// пользователь-рецепт: одна state-machine на оба вида.
type RelationKind string

const (
	KindFavorite RelationKind = "favorite"
	KindCart     RelationKind = "cart"
)

// UserRecipeRelation — связь (user, recipe, kind); тройка уникальна,
// уникальный индекс в хранилище закрывает гонку check-then-act.
type UserRecipeRelation struct {
	ID        int64        `gorm:"primaryKey"`
	UserID    int64        `gorm:"not null;index;uniqueIndex:idx_user_recipe_kind"`
	RecipeID  int64        `gorm:"not null;index;uniqueIndex:idx_user_recipe_kind"`
	Kind      RelationKind `gorm:"size:16;not null;uniqueIndex:idx_user_recipe_kind"`
	CreatedAt time.Time    `gorm:"autoCreateTime"`
}

func (UserRecipeRelation) TableName() string { return "user_recipe_relations" }
