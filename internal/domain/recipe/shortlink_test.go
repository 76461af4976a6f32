package recipe

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureShortLinkIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.mustCreate(t, f.validInput())

	code, err := f.service.EnsureShortLink(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(code) != DefaultShortLinkLength {
		t.Errorf("code %q length = %d, want %d", code, len(code), DefaultShortLinkLength)
	}

	again, err := f.service.EnsureShortLink(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again != code {
		t.Errorf("second call returned %q, want %q", again, code)
	}
}

func TestEnsureShortLinkUniquePerRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := make(map[string]int64)
	for i := 0; i < 20; i++ {
		in := f.validInput()
		in.Name = "Рецепт"
		rec := f.mustCreate(t, in)

		code, err := f.service.EnsureShortLink(ctx, rec.ID)
		if err != nil {
			t.Fatalf("ensure for %d: %v", rec.ID, err)
		}
		if other, ok := seen[code]; ok {
			t.Fatalf("code %q assigned to recipes %d and %d", code, other, rec.ID)
		}
		seen[code] = rec.ID
	}
}

func TestResolveShortLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.mustCreate(t, f.validInput())

	code, err := f.service.EnsureShortLink(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	id, err := f.service.ResolveShortLink(ctx, code)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != rec.ID {
		t.Errorf("resolved id = %d, want %d", id, rec.ID)
	}

	if _, err := f.service.ResolveShortLink(ctx, "nosuch"); !errors.Is(err, ErrShortLinkNotFound) {
		t.Fatalf("unknown code err = %v, want ErrShortLinkNotFound", err)
	}
}

func TestEnsureShortLinkUnknownRecipe(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.EnsureShortLink(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
