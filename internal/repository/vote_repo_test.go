package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ollie/capvote/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Image{}, &domain.Caption{}, &domain.Vote{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM caption_votes")
		db.Exec("DELETE FROM captions")
		db.Exec("DELETE FROM images")
	})
	return db
}

func newVote(id, captionID, userID string, voteType domain.VoteType) *domain.Vote {
	return &domain.Vote{
		ID:        id,
		CaptionID: captionID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: time.Now().UTC(),
	}
}

func TestVoteRepositoryDuplicateDetection(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newVote("v1", "cap-1", "user-1", domain.VoteUpvote)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	// Same pair again, even with a different direction, hits the unique index.
	err := repo.Create(ctx, newVote("v2", "cap-1", "user-1", domain.VoteDownvote))
	if err == nil {
		t.Fatal("second insert succeeded, want unique violation")
	}
	if !IsDuplicate(err) {
		t.Errorf("IsDuplicate(%v) = false, want true", err)
	}

	// Different user on the same caption is fine.
	if err := repo.Create(ctx, newVote("v3", "cap-1", "user-2", domain.VoteUpvote)); err != nil {
		t.Errorf("insert for second user failed: %v", err)
	}

	// Same user on a different caption is fine.
	if err := repo.Create(ctx, newVote("v4", "cap-2", "user-1", domain.VoteDownvote)); err != nil {
		t.Errorf("insert on second caption failed: %v", err)
	}
}

func TestVoteRepositoryGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newVote("v1", "cap-1", "user-1", domain.VoteDownvote)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	vote, err := repo.Get(ctx, "cap-1", "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if vote.VoteType != domain.VoteDownvote {
		t.Errorf("vote type = %q, want downvote", vote.VoteType)
	}

	_, err = repo.Get(ctx, "cap-1", "user-2")
	if !IsNotFound(err) {
		t.Errorf("Get() for absent vote err = %v, want not-found", err)
	}
}

func TestVoteRepositoryDeleteIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newVote("v1", "cap-1", "user-1", domain.VoteUpvote)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.Delete(ctx, "cap-1", "user-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "cap-1", "user-1"); !IsNotFound(err) {
		t.Errorf("vote still present after delete: %v", err)
	}

	// Deleting again is a no-op, not an error.
	if err := repo.Delete(ctx, "cap-1", "user-1"); err != nil {
		t.Errorf("second delete err = %v, want nil", err)
	}
}

func TestVoteRepositoryCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	votes := []*domain.Vote{
		newVote("v1", "cap-1", "user-1", domain.VoteUpvote),
		newVote("v2", "cap-1", "user-2", domain.VoteUpvote),
		newVote("v3", "cap-1", "user-3", domain.VoteDownvote),
		newVote("v4", "cap-2", "user-1", domain.VoteUpvote),
	}
	for _, v := range votes {
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("insert %s failed: %v", v.ID, err)
		}
	}

	upvotes, err := repo.CountByCaption(ctx, "cap-1", domain.VoteUpvote)
	if err != nil {
		t.Fatalf("CountByCaption() error = %v", err)
	}
	if upvotes != 2 {
		t.Errorf("upvotes = %d, want 2", upvotes)
	}

	counts, err := repo.CountUpvotesByCaptions(ctx, []string{"cap-1", "cap-2", "cap-3"})
	if err != nil {
		t.Fatalf("CountUpvotesByCaptions() error = %v", err)
	}
	if counts["cap-1"] != 2 || counts["cap-2"] != 1 {
		t.Errorf("counts = %v, want cap-1:2 cap-2:1", counts)
	}
	if _, ok := counts["cap-3"]; ok {
		t.Error("caption with no upvotes should be absent from the map")
	}

	empty, err := repo.CountUpvotesByCaptions(ctx, nil)
	if err != nil {
		t.Fatalf("CountUpvotesByCaptions(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("counts for empty input = %v, want empty map", empty)
	}
}
