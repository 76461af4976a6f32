package feed

import (
	"context"
	"log"
)

// FollowerSource отдаёт подписчиков автора.
type FollowerSource interface {
	ListFollowerIDs(ctx context.Context, authorID int64) ([]int64, error)
}

// Notifier толкает события публикаций в ленты подписчиков, которые онлайн.
type Notifier struct {
	hub       *Hub
	followers FollowerSource
}

func NewNotifier(hub *Hub, followers FollowerSource) *Notifier {
	return &Notifier{hub: hub, followers: followers}
}

// RecipePublished рассылает событие о новом рецепте подписчикам автора.
// Доставка best-effort: офлайн-подписчики событие не получат.
func (n *Notifier) RecipePublished(ctx context.Context, authorID, recipeID int64, name string) {
	ids, err := n.followers.ListFollowerIDs(ctx, authorID)
	if err != nil {
		log.Printf("feed: failed to load followers of user %d: %v", authorID, err)
		return
	}
	if len(ids) == 0 {
		return
	}

	n.hub.Broadcast(ids, &Event{
		Type: EventRecipePublished,
		Payload: map[string]interface{}{
			"recipe_id": recipeID,
			"author_id": authorID,
			"name":      name,
		},
	})
}
