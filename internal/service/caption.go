package service

import (
	"context"

	"github.com/ollie/capvote/internal/domain"
	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CaptionService serves the caption gallery with derived like counts.
type CaptionService struct {
	captions *repository.CaptionRepository
	votes    *repository.VoteRepository
	logger   *logger.Logger
}

// NewCaptionService creates a caption service.
func NewCaptionService(captions *repository.CaptionRepository, votes *repository.VoteRepository, log *logger.Logger) *CaptionService {
	if log == nil {
		log = logger.Default()
	}
	return &CaptionService{captions: captions, votes: votes, logger: log}
}

// CaptionListResult is a page of captions with the total row count.
type CaptionListResult struct {
	Captions []domain.Caption `json:"captions"`
	Total    int64            `json:"total"`
}

// ListCaptions returns captions newest-first with like counts attached.
func (s *CaptionService) ListCaptions(ctx context.Context, limit, offset int) (*CaptionListResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	captions, err := s.captions.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.NewStoreError("caption list", err)
	}

	ids := make([]string, len(captions))
	for i := range captions {
		ids[i] = captions[i].ID
	}
	counts, err := s.votes.CountUpvotesByCaptions(ctx, ids)
	if err != nil {
		return nil, domain.NewStoreError("vote count", err)
	}
	for i := range captions {
		captions[i].LikeCount = counts[captions[i].ID]
	}

	total, err := s.captions.Count(ctx)
	if err != nil {
		return nil, domain.NewStoreError("caption count", err)
	}

	return &CaptionListResult{Captions: captions, Total: total}, nil
}

// GetCaption returns one caption with its image and like count.
func (s *CaptionService) GetCaption(ctx context.Context, id string) (*domain.Caption, error) {
	caption, err := s.captions.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrCaptionNotFound
		}
		return nil, domain.NewStoreError("caption lookup", err)
	}

	likes, err := s.votes.CountByCaption(ctx, id, domain.VoteUpvote)
	if err != nil {
		return nil, domain.NewStoreError("vote count", err)
	}
	caption.LikeCount = likes

	return caption, nil
}
