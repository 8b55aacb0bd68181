package memes

import (
	"context"
	"errors"
	"testing"
)

func TestSetStatusOverwritesUnconditionally(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedMeme(t, db, Meme{ID: "meme-1", CreatedByID: "author", Status: StatusApproved, VoteCount: 7})
	ctx := context.Background()

	meme, err := service.SetStatus(ctx, "meme-1", StatusRejected)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if meme.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", meme.Status)
	}
	if meme.VoteCount != 7 {
		t.Fatalf("status transition must not touch vote count, got %d", meme.VoteCount)
	}

	// Any status may be rewritten to any other.
	meme, err = service.SetStatus(ctx, "meme-1", StatusApproved)
	if err != nil || meme.Status != StatusApproved {
		t.Fatalf("expected approved, got %s err=%v", meme.Status, err)
	}
}

func TestSetStatusOnMissingMemeReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.SetStatus(context.Background(), "ghost", StatusApproved); !errors.Is(err, ErrMemeNotFound) {
		t.Fatalf("expected ErrMemeNotFound, got %v", err)
	}
}

func TestDeleteCascadesVotesCommentsFavorites(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "fan-1")
	seedUser(t, db, "fan-2")
	seedMeme(t, db, Meme{ID: "doomed", CreatedByID: "author"})
	seedMeme(t, db, Meme{ID: "survivor", CreatedByID: "author"})
	ctx := context.Background()

	for _, fan := range []string{"fan-1", "fan-2"} {
		if _, err := service.ToggleVote(ctx, "doomed", fan, ActionUpvote); err != nil {
			t.Fatalf("vote failed: %v", err)
		}
		if _, err := service.ToggleFavorite(ctx, "doomed", fan, true); err != nil {
			t.Fatalf("favorite failed: %v", err)
		}
	}
	root, err := service.CreateComment(ctx, "doomed", "fan-1", "first", nil)
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if _, err := service.CreateComment(ctx, "doomed", "fan-2", "reply", &root.ID); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if _, err := service.ToggleVote(ctx, "survivor", "fan-1", ActionUpvote); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if err := service.Delete(ctx, "doomed"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, _, err := service.Get(ctx, "doomed"); !errors.Is(err, ErrMemeNotFound) {
		t.Fatalf("deleted meme must be gone, got %v", err)
	}
	if got := voteRowsOf(t, db, "doomed"); got != 0 {
		t.Fatalf("expected no orphan votes, got %d", got)
	}
	var commentCount, favoriteCount int64
	if err := db.Model(&Comment{}).Where("meme_id = ?", "doomed").Count(&commentCount).Error; err != nil || commentCount != 0 {
		t.Fatalf("expected no orphan comments, got %d err=%v", commentCount, err)
	}
	if err := db.Model(&Favorite{}).Where("meme_id = ?", "doomed").Count(&favoriteCount).Error; err != nil || favoriteCount != 0 {
		t.Fatalf("expected no orphan favorites, got %d err=%v", favoriteCount, err)
	}

	// Unrelated rows survive.
	if got := voteRowsOf(t, db, "survivor"); got != 1 {
		t.Fatalf("unrelated votes must survive, got %d", got)
	}
}

func TestDeleteMissingMemeReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	if err := service.Delete(context.Background(), "ghost"); !errors.Is(err, ErrMemeNotFound) {
		t.Fatalf("expected ErrMemeNotFound, got %v", err)
	}
}

func TestAdminListFiltersStatusAndCountsRows(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "fan")
	seedMeme(t, db, Meme{ID: "pending-1", CreatedByID: "author", Status: StatusPending})
	seedMeme(t, db, Meme{ID: "approved-1", CreatedByID: "author"})
	ctx := context.Background()

	if _, err := service.ToggleVote(ctx, "approved-1", "fan", ActionUpvote); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := service.CreateComment(ctx, "approved-1", "fan", "nice", nil); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	all, pagination, err := service.AdminList(ctx, "all", 1, 10)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(all) != 2 || pagination.Total != 2 {
		t.Fatalf("expected both statuses in 'all', got %d total=%d", len(all), pagination.Total)
	}

	pending, _, err := service.AdminList(ctx, "pending", 1, 10)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "pending-1" {
		t.Fatalf("unexpected pending listing: %#v", pending)
	}

	for _, entry := range all {
		if entry.ID != "approved-1" {
			continue
		}
		if entry.VoteRows != 1 || entry.CommentRows != 1 {
			t.Fatalf("expected 1 vote row and 1 comment row, got %d/%d", entry.VoteRows, entry.CommentRows)
		}
	}
}

func TestCollectStats(t *testing.T) {
	service, db := newTestService(t)
	seedUser(t, db, "author")
	seedUser(t, db, "fan")
	seedMeme(t, db, Meme{ID: "a", CreatedByID: "author", Status: StatusApproved})
	seedMeme(t, db, Meme{ID: "b", CreatedByID: "author", Status: StatusPending})
	seedMeme(t, db, Meme{ID: "c", CreatedByID: "author", Status: StatusRejected})
	ctx := context.Background()

	if _, err := service.ToggleVote(ctx, "a", "fan", ActionUpvote); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := service.CreateComment(ctx, "a", "fan", "hello", nil); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	stats, err := service.CollectStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalMemes != 3 || stats.PendingMemes != 1 || stats.ApprovedMemes != 1 || stats.RejectedMemes != 1 {
		t.Fatalf("unexpected meme counts: %+v", stats)
	}
	if stats.TotalVotes != 1 || stats.TotalComments != 1 {
		t.Fatalf("unexpected vote/comment counts: %+v", stats)
	}
}
