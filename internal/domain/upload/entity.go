package upload

import "time"

// Upload represents an image stored on the local filesystem.
// Recipes and user avatars reference uploads by public URL.
type Upload struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64     `gorm:"column:user_id" json:"user_id"`
	FilePath  string    `gorm:"column:file_path" json:"-"`  // relative disk path
	FileURL   string    `gorm:"column:file_url" json:"url"` // public HTTP URL
	MimeType  string    `gorm:"column:mime_type" json:"mime_type"`
	Size      int64     `gorm:"column:size" json:"size"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
