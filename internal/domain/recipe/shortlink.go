package recipe

import (
	"context"
	"crypto/rand"
)

// Алфавит короткой ссылки: латиница в обоих регистрах и цифры.
const shortLinkAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	DefaultShortLinkLength     = 6
	DefaultShortLinkMaxRetries = 10
)

// ShortLinkConfig — длина кода и потолок повторных попыток при коллизиях.
// Исходное поведение крутило цикл без ограничения; потолок защищает от
// зацикливания при исчерпании пространства кодов.
type ShortLinkConfig struct {
	Length     int
	MaxRetries int
}

func (c ShortLinkConfig) withDefaults() ShortLinkConfig {
	if c.Length <= 0 {
		c.Length = DefaultShortLinkLength
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultShortLinkMaxRetries
	}
	return c
}

// EnsureShortLink назначает рецепту код, если его ещё нет, и возвращает его.
// Повторные вызовы идемпотентны: код назначается один раз и не меняется.
// Коллизия на вставке (параллельный запрос или занятый код) не фатальна —
// берётся новый код, пока не исчерпан лимит попыток.
func (s *Service) EnsureShortLink(ctx context.Context, recipeID int64) (string, error) {
	rec, err := s.repo.GetByID(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if rec.ShortLink != nil {
		return *rec.ShortLink, nil
	}

	cfg := s.shortLinks.withDefaults()
	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		code, err := randomShortCode(cfg.Length)
		if err != nil {
			return "", err
		}

		assigned, err := s.repo.AssignShortLink(ctx, recipeID, code)
		if err != nil {
			if isUniqueViolation(err) {
				// код занят другим рецептом — тянем новый
				continue
			}
			return "", err
		}
		if assigned {
			return code, nil
		}

		// строка не изменилась: параллельный запрос успел раньше
		rec, err = s.repo.GetByID(ctx, recipeID)
		if err != nil {
			return "", err
		}
		if rec.ShortLink != nil {
			return *rec.ShortLink, nil
		}
	}

	return "", ErrShortLinkExhausted
}

// ResolveShortLink возвращает id рецепта по коду.
func (s *Service) ResolveShortLink(ctx context.Context, code string) (int64, error) {
	rec, err := s.repo.FindByShortLink(ctx, code)
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func randomShortCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = shortLinkAlphabet[int(b)%len(shortLinkAlphabet)]
	}
	return string(buf), nil
}
