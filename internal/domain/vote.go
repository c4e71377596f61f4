package domain

import "time"

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUpvote   VoteType = "upvote"
	VoteDownvote VoteType = "downvote"
)

// Valid reports whether the vote type is one of the known directions.
func (v VoteType) Valid() bool {
	return v == VoteUpvote || v == VoteDownvote
}

// Vote is one user's vote on one caption. The unique index over
// (caption_id, user_id) is the authoritative at-most-one-vote guarantee;
// the application only observes violations, it never locks.
type Vote struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	CaptionID string    `gorm:"type:text;not null;uniqueIndex:idx_caption_votes_caption_user" json:"caption_id"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex:idx_caption_votes_caption_user" json:"user_id"`
	VoteType  VoteType  `gorm:"type:text;not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string {
	return "caption_votes"
}
