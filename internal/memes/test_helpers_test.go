package memes

import (
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/memelab/memehub/internal/users"
)

type staticIDGenerator struct {
	prefix string
	index  int
}

func (g *staticIDGenerator) NewID() (string, error) {
	g.index++
	return fmt.Sprintf("%s-%d", g.prefix, g.index), nil
}

type failingIDGenerator struct{}

func (failingIDGenerator) NewID() (string, error) {
	return "", errors.New("exhausted ids")
}

var frozenNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memehub_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &Meme{}, &Vote{}, &Comment{}, &Favorite{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	service, err := NewService(ServiceConfig{
		Database:    db,
		Clock:       func() time.Time { return frozenNow },
		IDProvider:  &staticIDGenerator{prefix: "id"},
		AutoApprove: true,
	})
	if err != nil {
		t.Fatalf("failed to construct meme service: %v", err)
	}
	return service, db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	user := users.User{ID: id, Username: "user-" + id}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func seedMeme(t *testing.T, db *gorm.DB, meme Meme) Meme {
	t.Helper()
	if meme.Status == "" {
		meme.Status = StatusApproved
	}
	if meme.Title == "" {
		meme.Title = "title-" + meme.ID
	}
	if meme.Content == "" {
		meme.Content = "content-" + meme.ID
	}
	if meme.CreatedAt.IsZero() {
		meme.CreatedAt = frozenNow
	}
	if err := db.Create(&meme).Error; err != nil {
		t.Fatalf("failed to seed meme %s: %v", meme.ID, err)
	}
	return meme
}

func voteCountOf(t *testing.T, db *gorm.DB, memeID string) int64 {
	t.Helper()
	var meme Meme
	if err := db.Where("id = ?", memeID).First(&meme).Error; err != nil {
		t.Fatalf("failed to load meme %s: %v", memeID, err)
	}
	return meme.VoteCount
}

func voteRowsOf(t *testing.T, db *gorm.DB, memeID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&Vote{}).Where("meme_id = ?", memeID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	return count
}
