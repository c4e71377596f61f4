package domain

import "time"

// Caption represents a generated caption attached to an image.
// LikeCount is derived from the vote rows, never stored on the caption itself.
type Caption struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	ImageID   *string   `gorm:"type:text;index:idx_captions_image" json:"image_id,omitempty"`
	Content   *string   `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Image     *Image `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	LikeCount int64  `gorm:"-" json:"like_count"`
}

// TableName returns the database table name for Caption.
func (Caption) TableName() string {
	return "captions"
}
