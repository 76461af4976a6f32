package subscription

import (
	"context"
	"errors"

	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/user"
)

type Service struct {
	repo    Repository
	users   user.Repository
	recipes recipe.Repository
}

func NewService(repo Repository, users user.Repository, recipes recipe.Repository) *Service {
	return &Service{repo: repo, users: users, recipes: recipes}
}

// Subscribe оформляет подписку и возвращает карточку автора
// с подборкой его рецептов.
func (s *Service) Subscribe(ctx context.Context, followerID, authorID int64, recipesLimit int) (*AuthorResponse, error) {
	if followerID == authorID {
		return nil, ErrSelfSubscribe
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	if err := s.repo.Create(ctx, &Subscription{FollowerID: followerID, AuthorID: authorID}); err != nil {
		return nil, err
	}
	resp, err := s.buildAuthor(ctx, author, recipesLimit)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) Unsubscribe(ctx context.Context, followerID, authorID int64) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrAuthorNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, followerID, authorID)
}

func (s *Service) IsSubscribed(ctx context.Context, followerID, authorID int64) (bool, error) {
	return s.repo.IsSubscribed(ctx, followerID, authorID)
}

func (s *Service) ListFollowerIDs(ctx context.Context, authorID int64) ([]int64, error) {
	return s.repo.ListFollowerIDs(ctx, authorID)
}

// List возвращает страницу авторов, на которых подписан пользователь.
func (s *Service) List(ctx context.Context, followerID int64, page, perPage, recipesLimit int) ([]AuthorResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	authors, total, err := s.repo.ListAuthors(ctx, followerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	items := make([]AuthorResponse, 0, len(authors))
	for _, author := range authors {
		resp, err := s.buildAuthor(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *resp)
	}
	return items, total, nil
}

func (s *Service) buildAuthor(ctx context.Context, author *user.User, recipesLimit int) (*AuthorResponse, error) {
	recs, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	briefs := make([]recipe.Brief, len(recs))
	for i, r := range recs {
		briefs[i] = recipe.ToBrief(r)
	}
	return &AuthorResponse{
		Response:     user.ToResponse(author, true),
		Recipes:      briefs,
		RecipesCount: count,
	}, nil
}
