package memes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ThreadedComment is a root comment with its direct replies.
type ThreadedComment struct {
	Comment
	Replies    []Comment `json:"replies"`
	ReplyCount int       `json:"replyCount"`
}

// CreateComment stores a comment or a one-level reply. The parent, when
// given, must belong to the same meme and must itself be a root comment.
func (s *Service) CreateComment(ctx context.Context, memeID, userID, content string, parentID *string) (Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Comment{}, newValidationError("content", "must not be empty")
	}
	if len([]rune(trimmed)) > maxCommentLength {
		return Comment{}, newValidationError("content", fmt.Sprintf("must not exceed %d characters", maxCommentLength))
	}

	var created Comment
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meme Meme
		err := tx.Select("id").Where("id = ?", memeID).Take(&meme).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemeNotFound
		}
		if err != nil {
			return err
		}

		if parentID != nil && strings.TrimSpace(*parentID) != "" {
			var parent Comment
			err := tx.Where("id = ?", *parentID).Take(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			if err != nil {
				return err
			}
			if parent.MemeID != memeID {
				return ErrParentMemeMismatch
			}
			if parent.ParentID != nil {
				return ErrReplyTooDeep
			}
		} else {
			parentID = nil
		}

		commentID, err := s.idProvider.NewID()
		if err != nil {
			return err
		}
		created = Comment{
			ID:       commentID,
			MemeID:   memeID,
			UserID:   userID,
			Content:  trimmed,
			ParentID: parentID,
		}
		return tx.Create(&created).Error
	})
	if txErr != nil {
		return Comment{}, txErr
	}

	err := s.db.WithContext(ctx).Preload("User").Where("id = ?", created.ID).First(&created).Error
	return created, err
}

// ListComments returns root comments newest-first, each carrying its replies
// oldest-first.
func (s *Service) ListComments(ctx context.Context, memeID string) ([]ThreadedComment, error) {
	var roots []Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("meme_id = ? AND parent_id IS NULL", memeID).
		Order("created_at DESC").
		Find(&roots).Error
	if err != nil {
		return nil, err
	}

	var replies []Comment
	err = s.db.WithContext(ctx).Preload("User").
		Where("meme_id = ? AND parent_id IS NOT NULL", memeID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	repliesByParent := make(map[string][]Comment, len(roots))
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		repliesByParent[*reply.ParentID] = append(repliesByParent[*reply.ParentID], reply)
	}

	threaded := make([]ThreadedComment, 0, len(roots))
	for _, root := range roots {
		children := repliesByParent[root.ID]
		if children == nil {
			children = []Comment{}
		}
		threaded = append(threaded, ThreadedComment{
			Comment:    root,
			Replies:    children,
			ReplyCount: len(children),
		})
	}
	return threaded, nil
}
