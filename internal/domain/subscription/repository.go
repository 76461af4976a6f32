package subscription

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"foodgram/internal/domain/user"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, followerID, authorID int64) error
	IsSubscribed(ctx context.Context, followerID, authorID int64) (bool, error)
	ListAuthors(ctx context.Context, followerID int64, limit, offset int) ([]*user.User, int64, error)
	ListFollowerIDs(ctx context.Context, authorID int64) ([]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *Subscription) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadySubscribed
	}
	return err
}

func (r *repository) Delete(ctx context.Context, followerID, authorID int64) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

func (r *repository) IsSubscribed(ctx context.Context, followerID, authorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

// ListAuthors возвращает авторов подписок в порядке оформления,
// свежие подписки первыми.
func (r *repository) ListAuthors(ctx context.Context, followerID int64, limit, offset int) ([]*user.User, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("follower_id = ?", followerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []*user.User
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.follower_id = ?", followerID).
		Order("subscriptions.created_at DESC, subscriptions.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (r *repository) ListFollowerIDs(ctx context.Context, authorID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("author_id = ?", authorID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
