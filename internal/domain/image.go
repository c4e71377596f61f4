package domain

import "time"

// Image represents an uploaded image registered with the caption pipeline.
// URL is the CDN-reachable location; StorageKey is set only for images that
// went through the self-hosted storage backend.
type Image struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	StorageKey  string    `gorm:"type:text" json:"storage_key,omitempty"`
	ContentType string    `gorm:"type:text" json:"content_type,omitempty"`
	IsCommonUse bool      `gorm:"default:false" json:"is_common_use"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string {
	return "images"
}
