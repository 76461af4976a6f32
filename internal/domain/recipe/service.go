package recipe

import (
	"context"
	"strings"

	"foodgram/internal/domain/ingredient"
	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/upload"
	"foodgram/internal/domain/user"
)

type uploader interface {
	SaveBase64(ctx context.Context, userID int64, payload string) (*upload.Upload, error)
}

// SubscriptionChecker сообщает, подписан ли зритель на автора рецепта.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, followerID, authorID int64) (bool, error)
}

// Notifier получает событие публикации; nil допустим.
type Notifier interface {
	RecipePublished(ctx context.Context, authorID, recipeID int64, name string)
}

type Service struct {
	repo        Repository
	tags        tag.Repository
	ingredients ingredient.Repository
	uploads     uploader
	subs        SubscriptionChecker
	notifier    Notifier
	shortLinks  ShortLinkConfig
}

func NewService(
	repo Repository,
	tags tag.Repository,
	ingredients ingredient.Repository,
	uploads uploader,
	subs SubscriptionChecker,
	notifier Notifier,
	shortLinks ShortLinkConfig,
) *Service {
	return &Service{
		repo:        repo,
		tags:        tags,
		ingredients: ingredients,
		uploads:     uploads,
		subs:        subs,
		notifier:    notifier,
		shortLinks:  shortLinks,
	}
}

// Create валидирует payload целиком (все нарушения разом), сохраняет картинку
// и пишет рецепт одной транзакцией.
func (s *Service) Create(ctx context.Context, authorID int64, in Input) (*Recipe, error) {
	tags, items, verr := s.resolveInput(ctx, in, true)
	if verr != nil {
		return nil, verr
	}

	imageURL, err := s.storeImage(ctx, authorID, in.Image)
	if err != nil {
		return nil, err
	}

	rec := &Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		ImageURL:    imageURL,
		CookingTime: in.CookingTime,
	}
	if err := s.repo.Create(ctx, rec, tags, items); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.RecipePublished(ctx, authorID, rec.ID, rec.Name)
	}

	return s.repo.GetByID(ctx, rec.ID)
}

// Update доступен только автору. Строки продуктов заменяются целиком,
// теги переназначаются набором. Картинка опциональна: пустое поле
// оставляет прежнюю.
func (s *Service) Update(ctx context.Context, userID, recipeID int64, in Input) (*Recipe, error) {
	rec, err := s.repo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != userID {
		return nil, ErrForbidden
	}

	tags, items, verr := s.resolveInput(ctx, in, false)
	if verr != nil {
		return nil, verr
	}

	imageURL := rec.ImageURL
	if strings.TrimSpace(in.Image) != "" {
		imageURL, err = s.storeImage(ctx, userID, in.Image)
		if err != nil {
			return nil, err
		}
	}

	updated := &Recipe{
		ID:          rec.ID,
		AuthorID:    rec.AuthorID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		ImageURL:    imageURL,
		CookingTime: in.CookingTime,
	}
	if err := s.repo.Update(ctx, updated, tags, items); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, recipeID)
}

func (s *Service) Delete(ctx context.Context, userID, recipeID int64) error {
	rec, err := s.repo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if rec.AuthorID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, recipeID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Recipe, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Recipe, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.repo.List(ctx, f)
}

// AddRelation / RemoveRelation — общая state-machine для избранного и корзины:
// у пары (пользователь, рецепт) ровно два состояния, добавление занятой пары —
// Conflict, удаление свободной — NotFound.
func (s *Service) AddRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) (*Recipe, error) {
	rec, err := s.repo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddRelation(ctx, userID, recipeID, kind); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) RemoveRelation(ctx context.Context, userID, recipeID int64, kind RelationKind) error {
	return s.repo.RemoveRelation(ctx, userID, recipeID, kind)
}

// ShoppingList возвращает агрегат корзины и рецепты, из которых он собран.
// Пустая корзина — пустой список, не ошибка.
func (s *Service) ShoppingList(ctx context.Context, userID int64) ([]ShoppingListItem, []*Recipe, error) {
	items, err := s.repo.ShoppingList(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	recipes, err := s.repo.CartRecipes(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return items, recipes, nil
}

// BuildResponse собирает читаемое представление для конкретного зрителя.
func (s *Service) BuildResponse(ctx context.Context, rec *Recipe, viewerID int64) Response {
	resp := Response{
		ID:          rec.ID,
		Name:        rec.Name,
		Image:       rec.ImageURL,
		Text:        rec.Text,
		CookingTime: rec.CookingTime,
		Tags:        rec.Tags,
		PubDate:     rec.PubDate,
	}
	if resp.Tags == nil {
		resp.Tags = []tag.Tag{}
	}

	resp.Ingredients = make([]IngredientInRecipe, 0, len(rec.Ingredients))
	for _, item := range rec.Ingredients {
		row := IngredientInRecipe{
			ID:     item.IngredientID,
			Amount: item.Amount,
		}
		if item.Ingredient != nil {
			row.Name = item.Ingredient.Name
			row.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, row)
	}

	if rec.Author != nil {
		resp.Author = user.ToResponse(rec.Author, s.isSubscribed(ctx, viewerID, rec.AuthorID))
	}

	if viewerID != 0 {
		if ok, err := s.repo.HasRelation(ctx, viewerID, rec.ID, KindFavorite); err == nil {
			resp.IsFavorited = ok
		}
		if ok, err := s.repo.HasRelation(ctx, viewerID, rec.ID, KindCart); err == nil {
			resp.IsInShoppingCart = ok
		}
	}
	return resp
}

func (s *Service) isSubscribed(ctx context.Context, viewerID, authorID int64) bool {
	if s.subs == nil || viewerID == 0 || viewerID == authorID {
		return false
	}
	ok, err := s.subs.IsSubscribed(ctx, viewerID, authorID)
	if err != nil {
		return false
	}
	return ok
}

// resolveInput валидирует payload и разворачивает id тегов и продуктов
// в сущности. Неизвестные id попадают в ту же карту ошибок валидации.
func (s *Service) resolveInput(ctx context.Context, in Input, requireImage bool) ([]tag.Tag, []RecipeIngredient, error) {
	fields := validateInput(in, requireImage)

	var tags []tag.Tag
	if _, bad := fields["tags"]; !bad && len(in.Tags) > 0 {
		found, err := s.tags.GetByIDs(ctx, in.Tags)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(in.Tags) {
			fields["tags"] = "unknown tag ids"
		} else {
			tags = make([]tag.Tag, len(found))
			for i, t := range found {
				tags[i] = *t
			}
		}
	}

	var items []RecipeIngredient
	if _, bad := fields["ingredients"]; !bad && len(in.Ingredients) > 0 {
		ids := make([]int64, len(in.Ingredients))
		for i, item := range in.Ingredients {
			ids[i] = item.ID
		}
		found, err := s.ingredients.GetByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(ids) {
			fields["ingredients"] = "unknown ingredient ids"
		} else {
			items = make([]RecipeIngredient, len(in.Ingredients))
			for i, item := range in.Ingredients {
				items[i] = RecipeIngredient{
					IngredientID: item.ID,
					Amount:       item.Amount,
				}
			}
		}
	}

	if len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}
	return tags, items, nil
}

func (s *Service) storeImage(ctx context.Context, userID int64, payload string) (string, error) {
	u, err := s.uploads.SaveBase64(ctx, userID, payload)
	if err != nil {
		switch err {
		case upload.ErrEmptyFile, upload.ErrInvalidEncoding, upload.ErrInvalidMimeType, upload.ErrFileTooLarge:
			return "", &ValidationError{Fields: map[string]string{"image": err.Error()}}
		}
		return "", err
	}
	return u.FileURL, nil
}
