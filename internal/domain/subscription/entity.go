package subscription

import (
	"time"

	"foodgram/internal/domain/user"
)

// Subscription — подписка читателя (follower) на автора.
// Пара уникальна, подписка на себя запрещена на уровне БД.
type Subscription struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	FollowerID int64      `gorm:"not null;uniqueIndex:idx_follower_author;check:follower_id <> author_id" json:"follower_id"`
	AuthorID   int64      `gorm:"not null;uniqueIndex:idx_follower_author;index" json:"author_id"`
	Follower   *user.User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Author     *user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
