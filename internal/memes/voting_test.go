package memes

import (
	"context"
	"errors"
	"testing"
)

func TestUpvoteCreatesVoteAndIncrementsCounter(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author"})

	voted, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionUpvote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !voted {
		t.Fatalf("expected voted=true after upvote")
	}
	if got := voteCountOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("expected vote count 1, got %d", got)
	}
	if got := voteRowsOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("expected 1 vote row, got %d", got)
	}
}

func TestSecondUpvoteConflictsWithoutChangingCounter(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author"})

	if _, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionUpvote); err != nil {
		t.Fatalf("first upvote failed: %v", err)
	}
	_, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionUpvote)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if got := voteCountOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("failed upvote must not change counter, got %d", got)
	}
	if got := voteRowsOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("expected 1 vote row, got %d", got)
	}
}

func TestDownvoteRemovesVoteAndRestoresCounter(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author"})

	if _, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionUpvote); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	voted, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionDownvote)
	if err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if voted {
		t.Fatalf("expected voted=false after downvote")
	}
	if got := voteCountOf(t, db, "meme-1"); got != 0 {
		t.Fatalf("expected counter back to 0, got %d", got)
	}
	if got := voteRowsOf(t, db, "meme-1"); got != 0 {
		t.Fatalf("expected vote row removed, got %d", got)
	}
}

func TestDownvoteWithoutPriorVoteConflicts(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author"})

	_, err := service.ToggleVote(context.Background(), "meme-1", "stranger", ActionDownvote)
	if !errors.Is(err, ErrNotYetVoted) {
		t.Fatalf("expected ErrNotYetVoted, got %v", err)
	}
	if got := voteCountOf(t, db, "meme-1"); got != 0 {
		t.Fatalf("failed downvote must not change counter, got %d", got)
	}
}

func TestVoteOnMissingMemeReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ToggleVote(context.Background(), "ghost", "voter", ActionUpvote)
	if !errors.Is(err, ErrMemeNotFound) {
		t.Fatalf("expected ErrMemeNotFound, got %v", err)
	}
}

func TestConcurrentDuplicateInsertTranslatesToConflict(t *testing.T) {
	// Simulates losing the race: another request's vote row is already
	// committed when our insert hits the unique index.
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author", VoteCount: 1})
	if err := db.Create(&Vote{ID: "winner", MemeID: "meme-1", UserID: "voter"}).Error; err != nil {
		t.Fatalf("failed to seed winning vote: %v", err)
	}

	_, err := service.ToggleVote(context.Background(), "meme-1", "voter", ActionUpvote)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("unique violation must surface as ErrAlreadyVoted, got %v", err)
	}
	if got := voteCountOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("counter must reflect exactly one increment, got %d", got)
	}
	if got := voteRowsOf(t, db, "meme-1"); got != 1 {
		t.Fatalf("expected exactly one vote row, got %d", got)
	}
}

func TestVoteScenarioTwoUsers(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "user-a")
	seedUser(t, db, "user-b")
	seedMeme(t, db, Meme{ID: "meme-m", CreatedByID: "author"})
	ctx := context.Background()

	if _, err := service.ToggleVote(ctx, "meme-m", "user-a", ActionUpvote); err != nil {
		t.Fatalf("A upvote failed: %v", err)
	}
	if got := voteCountOf(t, db, "meme-m"); got != 1 {
		t.Fatalf("after A upvote expected 1, got %d", got)
	}
	votedA, err := service.HasVoted(ctx, "meme-m", "user-a")
	if err != nil || !votedA {
		t.Fatalf("expected voted(A)=true, got %v err=%v", votedA, err)
	}

	if _, err := service.ToggleVote(ctx, "meme-m", "user-b", ActionUpvote); err != nil {
		t.Fatalf("B upvote failed: %v", err)
	}
	if got := voteCountOf(t, db, "meme-m"); got != 2 {
		t.Fatalf("after B upvote expected 2, got %d", got)
	}

	if _, err := service.ToggleVote(ctx, "meme-m", "user-a", ActionDownvote); err != nil {
		t.Fatalf("A downvote failed: %v", err)
	}
	if got := voteCountOf(t, db, "meme-m"); got != 1 {
		t.Fatalf("after A downvote expected 1, got %d", got)
	}

	votedA, err = service.HasVoted(ctx, "meme-m", "user-a")
	if err != nil || votedA {
		t.Fatalf("expected voted(A)=false, got %v err=%v", votedA, err)
	}
	votedB, err := service.HasVoted(ctx, "meme-m", "user-b")
	if err != nil || !votedB {
		t.Fatalf("expected voted(B)=true, got %v err=%v", votedB, err)
	}
}

func TestFavoriteToggleAndDuplicates(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "fan")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author"})
	ctx := context.Background()

	favorited, err := service.ToggleFavorite(ctx, "meme-1", "fan", true)
	if err != nil || !favorited {
		t.Fatalf("expected favorited=true, got %v err=%v", favorited, err)
	}

	_, err = service.ToggleFavorite(ctx, "meme-1", "fan", true)
	if !errors.Is(err, ErrAlreadyFavorited) {
		t.Fatalf("expected ErrAlreadyFavorited, got %v", err)
	}

	has, err := service.HasFavorited(ctx, "meme-1", "fan")
	if err != nil || !has {
		t.Fatalf("expected HasFavorited=true, got %v err=%v", has, err)
	}

	favorited, err = service.ToggleFavorite(ctx, "meme-1", "fan", false)
	if err != nil || favorited {
		t.Fatalf("expected favorited=false after removal, got %v err=%v", favorited, err)
	}

	_, err = service.ToggleFavorite(ctx, "meme-1", "fan", false)
	if !errors.Is(err, ErrNotFavorited) {
		t.Fatalf("expected ErrNotFavorited, got %v", err)
	}

	// Favorites never touch the vote counter.
	if got := voteCountOf(t, db, "meme-1"); got != 0 {
		t.Fatalf("favorite toggles must not move vote count, got %d", got)
	}
}

func TestFavoriteOnMissingMemeReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ToggleFavorite(context.Background(), "ghost", "fan", true)
	if !errors.Is(err, ErrMemeNotFound) {
		t.Fatalf("expected ErrMemeNotFound, got %v", err)
	}
}
