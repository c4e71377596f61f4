package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ollie/capvote/internal/domain"
	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/repository"
)

// VotePolicy selects which vote schema variant is authoritative.
type VotePolicy string

const (
	// PolicyLedger keeps one immutable vote per (caption, user) in either
	// direction; a second vote of any direction is rejected.
	PolicyLedger VotePolicy = "ledger"

	// PolicyLikes stores upvotes only; a duplicate upvote is normalized to
	// success, and a downvote deletes the like row idempotently.
	PolicyLikes VotePolicy = "likes"
)

// ParseVotePolicy maps a config string to a policy, defaulting to ledger.
func ParseVotePolicy(s string) VotePolicy {
	if VotePolicy(s) == PolicyLikes {
		return PolicyLikes
	}
	return PolicyLedger
}

// VoteStore is the persistence surface SubmitVote needs. The store's unique
// constraint over (caption, user) is the at-most-one-vote guarantee; Create
// must surface its violation through repository.IsDuplicate.
type VoteStore interface {
	Create(ctx context.Context, vote *domain.Vote) error
	Get(ctx context.Context, captionID, userID string) (*domain.Vote, error)
	Delete(ctx context.Context, captionID, userID string) error
}

// VoteResult reports the outcome of a vote submission.
type VoteResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	CurrentVote string `json:"current_vote,omitempty"`
}

// VoteService enforces the vote-submission contract on top of the store's
// uniqueness constraint.
type VoteService struct {
	store  VoteStore
	policy VotePolicy
	logger *logger.Logger
}

// NewVoteService creates a vote service with the given policy.
func NewVoteService(store VoteStore, policy VotePolicy, log *logger.Logger) *VoteService {
	if log == nil {
		log = logger.Default()
	}
	return &VoteService{store: store, policy: policy, logger: log}
}

// SubmitVote records a vote by userID on captionID. Rejected calls produce no
// store mutation. Safe to call repeatedly: at-most-one-effective-vote is the
// invariant, not at-most-one-call.
func (s *VoteService) SubmitVote(ctx context.Context, userID, captionID string, voteType domain.VoteType) (*VoteResult, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if captionID == "" {
		return nil, fmt.Errorf("%w: caption id is required", domain.ErrInvalidVote)
	}
	if !voteType.Valid() {
		return nil, fmt.Errorf("%w: unknown vote type %q", domain.ErrInvalidVote, voteType)
	}

	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldUserID:    userID,
		logger.FieldCaptionID: captionID,
	})

	switch s.policy {
	case PolicyLikes:
		return s.submitLike(ctx, log, userID, captionID, voteType)
	default:
		return s.submitLedger(ctx, log, userID, captionID, voteType)
	}
}

func (s *VoteService) submitLedger(ctx context.Context, log *logger.Logger, userID, captionID string, voteType domain.VoteType) (*VoteResult, error) {
	err := s.store.Create(ctx, s.newVote(userID, captionID, voteType))
	if err != nil {
		if repository.IsDuplicate(err) {
			log.Debug("duplicate vote rejected")
			return nil, domain.ErrAlreadyVoted
		}
		log.WithError(err).Error("vote insert failed")
		return nil, domain.NewStoreError("vote insert", err)
	}

	log.WithField("vote_type", voteType).Info("vote recorded")
	return &VoteResult{
		Success:     true,
		Message:     "Vote submitted",
		CurrentVote: string(voteType),
	}, nil
}

func (s *VoteService) submitLike(ctx context.Context, log *logger.Logger, userID, captionID string, voteType domain.VoteType) (*VoteResult, error) {
	if voteType == domain.VoteDownvote {
		// Removing a like that doesn't exist is a no-op, not an error.
		if err := s.store.Delete(ctx, captionID, userID); err != nil && !repository.IsNotFound(err) {
			log.WithError(err).Error("vote delete failed")
			return nil, domain.NewStoreError("vote delete", err)
		}
		log.Info("like removed")
		return &VoteResult{Success: true, Message: "Vote removed"}, nil
	}

	err := s.store.Create(ctx, s.newVote(userID, captionID, domain.VoteUpvote))
	if err != nil {
		if repository.IsDuplicate(err) {
			// The like already exists; report current state as success.
			return &VoteResult{
				Success:     true,
				Message:     "You already upvoted this caption",
				CurrentVote: string(domain.VoteUpvote),
			}, nil
		}
		log.WithError(err).Error("vote insert failed")
		return nil, domain.NewStoreError("vote insert", err)
	}

	log.Info("like recorded")
	return &VoteResult{
		Success:     true,
		Message:     "Vote submitted",
		CurrentVote: string(domain.VoteUpvote),
	}, nil
}

func (s *VoteService) newVote(userID, captionID string, voteType domain.VoteType) *domain.Vote {
	return &domain.Vote{
		ID:        uuid.New().String(),
		CaptionID: captionID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: time.Now().UTC(),
	}
}

// CurrentVote reports the vote userID has on captionID, or empty if none.
func (s *VoteService) CurrentVote(ctx context.Context, userID, captionID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	vote, err := s.store.Get(ctx, captionID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", nil
		}
		return "", domain.NewStoreError("vote lookup", err)
	}
	return string(vote.VoteType), nil
}
