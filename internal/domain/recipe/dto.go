package recipe

import (
	"time"

	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/user"
)

// Input — payload создания/обновления рецепта. Картинка приходит base64-строкой.
type Input struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
	Tags        []int64            `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

type IngredientAmount struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// IngredientInRecipe — продукт в читаемом представлении рецепта.
type IngredientInRecipe struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Response — полное читаемое представление: автор, теги и продукты
// развёрнуты, флаги зависят от зрителя.
type Response struct {
	ID               int64                `json:"id"`
	Author           user.Response        `json:"author"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
	Tags             []tag.Tag            `json:"tags"`
	Ingredients      []IngredientInRecipe `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	PubDate          time.Time            `json:"pub_date"`
}

// Brief — краткая карточка рецепта (ответы на добавление в избранное/корзину,
// списки рецептов автора в подписках).
type Brief struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func ToBrief(r *Recipe) Brief {
	return Brief{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

type ListResponse struct {
	Recipes    []Response `json:"recipes"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}
