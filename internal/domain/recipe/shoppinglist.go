package recipe

import (
	"fmt"
	"strings"
	"time"

	"foodgram/internal/domain/user"
)

// ShoppingListItem — агрегированная строка списка покупок.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}

// RenderShoppingList — чистая функция форматирования: принимает уже
// агрегированные данные и собирает текстовый документ для выгрузки.
func RenderShoppingList(owner *user.User, now time.Time, items []ShoppingListItem, recipes []*Recipe) string {
	var b strings.Builder

	b.WriteString("Список покупок\n")
	fmt.Fprintf(&b, "Пользователь: %s %s (%s)\n", owner.FirstName, owner.LastName, owner.Username)
	fmt.Fprintf(&b, "Дата: %s\n\n", now.Format("02.01.2006 15:04"))

	if len(items) == 0 {
		b.WriteString("Список пуст.\n")
		return b.String()
	}

	b.WriteString("Продукты:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s) — %d\n", i+1, item.Name, item.MeasurementUnit, item.TotalAmount)
	}

	if len(recipes) > 0 {
		b.WriteString("\nРецепты:\n")
		for _, r := range recipes {
			author := ""
			if r.Author != nil {
				author = " — " + r.Author.Username
			}
			fmt.Fprintf(&b, "- %s%s\n", r.Name, author)
		}
	}

	return b.String()
}
