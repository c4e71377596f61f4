package repository

import (
	"context"

	"github.com/ollie/capvote/internal/domain"
	"gorm.io/gorm"
)

// VoteRepository handles vote row access. The (caption_id, user_id) unique
// index owns the at-most-one-vote invariant; Create simply surfaces its
// violation.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create inserts a vote row. A duplicate (caption, user) pair fails with an
// error for which IsDuplicate returns true.
func (r *VoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// Get retrieves the vote a user cast on a caption.
func (r *VoteRepository) Get(ctx context.Context, captionID, userID string) (*domain.Vote, error) {
	var vote domain.Vote
	if err := r.db.WithContext(ctx).
		First(&vote, "caption_id = ? AND user_id = ?", captionID, userID).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// Delete removes a user's vote on a caption. Deleting a non-existent row is
// not an error.
func (r *VoteRepository) Delete(ctx context.Context, captionID, userID string) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Vote{}, "caption_id = ? AND user_id = ?", captionID, userID).Error
}

// CountByCaption counts votes of one direction on a caption.
func (r *VoteRepository) CountByCaption(ctx context.Context, captionID string, voteType domain.VoteType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Vote{}).
		Where("caption_id = ? AND vote_type = ?", captionID, voteType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountUpvotesByCaptions returns upvote counts keyed by caption ID for the
// given set of captions. Captions with no upvotes are absent from the map.
func (r *VoteRepository) CountUpvotesByCaptions(ctx context.Context, captionIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(captionIDs))
	if len(captionIDs) == 0 {
		return counts, nil
	}

	type row struct {
		CaptionID string
		Total     int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&domain.Vote{}).
		Select("caption_id, COUNT(*) AS total").
		Where("caption_id IN ? AND vote_type = ?", captionIDs, domain.VoteUpvote).
		Group("caption_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.CaptionID] = r.Total
	}
	return counts, nil
}
