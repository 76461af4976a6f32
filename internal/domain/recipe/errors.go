package recipe

import (
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("recipe not found")
	ErrForbidden          = errors.New("only the author can modify the recipe")
	ErrRelationExists     = errors.New("recipe is already added")
	ErrRelationNotFound   = errors.New("recipe is not in the list")
	ErrShortLinkNotFound  = errors.New("short link not found")
	ErrShortLinkExhausted = errors.New("failed to allocate a unique short link")
)

// ValidationError собирает все нарушения инварианты рецепта разом,
// чтобы клиент получил один комбинированный ответ.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Fields[k])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

// isUniqueViolation распознаёт нарушение уникального индекса и в PostgreSQL
// (pgconn, код 23505), и в sqlite (по тексту ошибки драйвера).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, "unique")
}
