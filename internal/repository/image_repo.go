package repository

import (
	"context"

	"github.com/ollie/capvote/internal/domain"
	"gorm.io/gorm"
)

// ImageRepository handles registered image records.
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts a new image record.
func (r *ImageRepository) Create(ctx context.Context, image *domain.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetByID retrieves an image by its ID.
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByURL retrieves an image by its CDN URL.
func (r *ImageRepository) GetByURL(ctx context.Context, url string) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, "url = ?", url).Error; err != nil {
		return nil, err
	}
	return &image, nil
}
