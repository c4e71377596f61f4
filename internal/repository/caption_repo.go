package repository

import (
	"context"

	"github.com/ollie/capvote/internal/domain"
	"gorm.io/gorm"
)

// CaptionRepository handles caption data operations.
type CaptionRepository struct {
	db *gorm.DB
}

// NewCaptionRepository creates a new CaptionRepository.
func NewCaptionRepository(db *gorm.DB) *CaptionRepository {
	return &CaptionRepository{db: db}
}

// Create inserts a new caption record.
func (r *CaptionRepository) Create(ctx context.Context, caption *domain.Caption) error {
	return r.db.WithContext(ctx).Create(caption).Error
}

// GetByID retrieves a caption with its image expanded.
func (r *CaptionRepository) GetByID(ctx context.Context, id string) (*domain.Caption, error) {
	var caption domain.Caption
	if err := r.db.WithContext(ctx).
		Preload("Image").
		First(&caption, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &caption, nil
}

// List retrieves captions newest-first with their images expanded.
func (r *CaptionRepository) List(ctx context.Context, limit, offset int) ([]domain.Caption, error) {
	var captions []domain.Caption
	if err := r.db.WithContext(ctx).
		Preload("Image").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&captions).Error; err != nil {
		return nil, err
	}
	return captions, nil
}

// Count returns the total number of captions.
func (r *CaptionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Caption{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
