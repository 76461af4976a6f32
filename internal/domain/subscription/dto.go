package subscription

import (
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/user"
)

// AuthorResponse — автор глазами подписчика: карточка пользователя
// плюс его рецепты (обрезанные по recipes_limit) и их общее число.
type AuthorResponse struct {
	user.Response
	Recipes      []recipe.Brief `json:"recipes"`
	RecipesCount int64          `json:"recipes_count"`
}

type ListResponse struct {
	Authors    []AuthorResponse `json:"authors"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}
