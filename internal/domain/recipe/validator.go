package recipe

import (
	"fmt"
	"sort"
	"strings"
)

// validateInput проверяет кросс-полевые инварианты рецепта и накапливает
// ВСЕ нарушения, не останавливаясь на первом.
func validateInput(in Input, requireImage bool) map[string]string {
	fields := make(map[string]string)

	if len(in.Tags) == 0 {
		fields["tags"] = "at least one tag is required"
	} else if dups := duplicateIDs(in.Tags); len(dups) > 0 {
		fields["tags"] = fmt.Sprintf("duplicate tags: %s", joinIDs(dups))
	}

	if len(in.Ingredients) == 0 {
		fields["ingredients"] = "at least one ingredient is required"
	} else {
		ids := make([]int64, len(in.Ingredients))
		badAmount := false
		for i, item := range in.Ingredients {
			ids[i] = item.ID
			if item.Amount < 1 {
				badAmount = true
			}
		}
		if dups := duplicateIDs(ids); len(dups) > 0 {
			fields["ingredients"] = fmt.Sprintf("duplicate ingredients: %s", joinIDs(dups))
		} else if badAmount {
			fields["ingredients"] = "ingredient amount must be at least 1"
		}
	}

	if in.CookingTime < 1 {
		fields["cooking_time"] = "cooking time must be at least 1 minute"
	}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(in.Text) == "" {
		fields["text"] = "text is required"
	}
	if requireImage && strings.TrimSpace(in.Image) == "" {
		fields["image"] = "image is required"
	}

	return fields
}

func duplicateIDs(ids []int64) []int64 {
	seen := make(map[int64]int, len(ids))
	for _, id := range ids {
		seen[id]++
	}
	var dups []int64
	for id, count := range seen {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
