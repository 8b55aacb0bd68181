package memes

import (
	"strings"
	"time"

	"github.com/memelab/memehub/internal/users"
)

// Status is the moderation state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a raw moderation status value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

const (
	maxTitleLength   = 100
	maxContentLength = 500
	maxCommentLength = 500
)

// Meme is the primary content unit. VoteCount is denormalized and must equal
// the number of Vote rows referencing the meme; every mutation path updates
// both inside one transaction.
type Meme struct {
	ID          string      `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Title       string      `gorm:"column:title;size:100;not null" json:"title"`
	Content     string      `gorm:"column:content;size:500;not null" json:"content"`
	Tags        string      `gorm:"column:tags;size:255;not null;default:''" json:"tags"`
	ImageURL    string      `gorm:"column:image_url;size:512" json:"imageUrl"`
	Status      Status      `gorm:"column:status;size:16;not null;default:'pending';index" json:"status"`
	VoteCount   int64       `gorm:"column:vote_count;not null;default:0;index" json:"voteCount"`
	CreatedByID string      `gorm:"column:created_by_id;size:190;not null;index" json:"createdById"`
	CreatedBy   *users.User `gorm:"foreignKey:CreatedByID;references:ID" json:"createdBy,omitempty"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Meme) TableName() string {
	return "memes"
}

// FirstTag returns the leading entry of the comma-joined tag string.
func (m Meme) FirstTag() string {
	head, _, _ := strings.Cut(m.Tags, ",")
	return strings.TrimSpace(head)
}

// Vote is the join row recording a user's endorsement of a meme. The
// composite unique index is the only concurrency-correctness mechanism for
// duplicate attempts: a second concurrent insert fails the constraint and is
// reported as an already-voted conflict.
type Vote struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	MemeID    string    `gorm:"column:meme_id;size:190;not null;uniqueIndex:idx_votes_meme_user,priority:1" json:"memeId"`
	Meme      *Meme     `gorm:"foreignKey:MemeID;references:ID;constraint:OnDelete:CASCADE" json:"meme,omitempty"`
	UserID    string    `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_votes_meme_user,priority:2;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Vote) TableName() string {
	return "votes"
}

// Favorite is a user's bookmark of a meme, independent of voting.
type Favorite struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	MemeID    string    `gorm:"column:meme_id;size:190;not null;uniqueIndex:idx_favorites_meme_user,priority:1" json:"memeId"`
	Meme      *Meme     `gorm:"foreignKey:MemeID;references:ID;constraint:OnDelete:CASCADE" json:"meme,omitempty"`
	UserID    string    `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_favorites_meme_user,priority:2;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Favorite) TableName() string {
	return "favorites"
}

// Comment belongs to a meme and a user. ParentID supports exactly one level
// of threading; the service rejects replies whose parent is itself a reply.
type Comment struct {
	ID        string      `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	MemeID    string      `gorm:"column:meme_id;size:190;not null;index" json:"memeId"`
	UserID    string      `gorm:"column:user_id;size:190;not null" json:"userId"`
	User      *users.User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Content   string      `gorm:"column:content;size:500;not null" json:"content"`
	ParentID  *string     `gorm:"column:parent_id;size:190;index" json:"parentId"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Comment) TableName() string {
	return "comments"
}
