package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/database"
)

// Минимальный валидный PNG (1x1 пиксель).
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(&Upload{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dir := t.TempDir()
	return NewService(NewRepository(db), dir, "/static/uploads"), dir
}

func TestSaveBase64WithDataURI(t *testing.T) {
	s, dir := newTestService(t)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	u, err := s.SaveBase64(context.Background(), 1, payload)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if u.MimeType != "image/png" {
		t.Errorf("mime = %q", u.MimeType)
	}
	if !strings.HasPrefix(u.FileURL, "/static/uploads/") {
		t.Errorf("url = %q", u.FileURL)
	}
	if !strings.HasSuffix(u.FilePath, ".png") {
		t.Errorf("path = %q", u.FilePath)
	}
	if _, err := os.Stat(filepath.Join(dir, u.FilePath)); err != nil {
		t.Errorf("file not on disk: %v", err)
	}
}

func TestSaveBase64RawPayload(t *testing.T) {
	s, _ := newTestService(t)

	// Голый base64 без data-URI префикса тоже принимается.
	u, err := s.SaveBase64(context.Background(), 1, base64.StdEncoding.EncodeToString(pngBytes))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if u.MimeType != "image/png" {
		t.Errorf("mime = %q", u.MimeType)
	}
}

func TestSaveBase64Rejections(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"empty", "", ErrEmptyFile},
		{"whitespace", "   ", ErrEmptyFile},
		{"not base64", "data:image/png;base64,$$$$", ErrInvalidEncoding},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("just text, not an image")), ErrInvalidMimeType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.SaveBase64(ctx, 1, tc.payload); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	s, dir := newTestService(t)
	ctx := context.Background()

	u, err := s.SaveBase64(ctx, 1, base64.StdEncoding.EncodeToString(pngBytes))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, u.FilePath)); !os.IsNotExist(err) {
		t.Errorf("file still on disk")
	}
	if err := s.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
