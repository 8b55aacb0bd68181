package memes

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VoteAction selects the vote toggle direction.
type VoteAction string

const (
	// ActionUpvote records a vote.
	ActionUpvote VoteAction = "upvote"
	// ActionDownvote withdraws a previously recorded vote.
	ActionDownvote VoteAction = "downvote"
)

// ParseVoteAction validates a raw vote action value.
func ParseVoteAction(raw string) (VoteAction, bool) {
	switch VoteAction(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionUpvote:
		return ActionUpvote, true
	case ActionDownvote:
		return ActionDownvote, true
	default:
		return "", false
	}
}

// ToggleVote applies an upvote or downvote for the (meme, user) pair. The
// vote row mutation and the denormalized counter update commit as one
// transaction; a concurrent duplicate insert trips the unique index and is
// reported as ErrAlreadyVoted. Returns whether the user holds a vote after
// the call.
func (s *Service) ToggleVote(ctx context.Context, memeID, userID string, action VoteAction) (bool, error) {
	voted := false
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meme Meme
		err := tx.Select("id").Where("id = ?", memeID).Take(&meme).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemeNotFound
		}
		if err != nil {
			return err
		}

		switch action {
		case ActionUpvote:
			voteID, err := s.idProvider.NewID()
			if err != nil {
				return err
			}
			vote := Vote{ID: voteID, MemeID: memeID, UserID: userID}
			if err := tx.Create(&vote).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyVoted
				}
				return err
			}
			if err := tx.Model(&Meme{}).Where("id = ?", memeID).
				UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
				return err
			}
			voted = true
			return nil

		case ActionDownvote:
			result := tx.Where("meme_id = ? AND user_id = ?", memeID, userID).Delete(&Vote{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotYetVoted
			}
			if err := tx.Model(&Meme{}).Where("id = ?", memeID).
				UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error; err != nil {
				return err
			}
			voted = false
			return nil

		default:
			return newValidationError("action", "must be upvote or downvote")
		}
	})
	if txErr != nil {
		if !errors.Is(txErr, ErrMemeNotFound) && !errors.Is(txErr, ErrAlreadyVoted) &&
			!errors.Is(txErr, ErrNotYetVoted) && !IsValidation(txErr) {
			s.logger.Error("vote toggle failed",
				zap.String("meme_id", memeID),
				zap.String("user_id", userID),
				zap.String("action", string(action)),
				zap.Error(txErr))
		}
		return false, txErr
	}
	return voted, nil
}

// HasVoted reports whether the user currently holds a vote on the meme.
func (s *Service) HasVoted(ctx context.Context, memeID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Vote{}).
		Where("meme_id = ? AND user_id = ?", memeID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ToggleFavorite adds or removes a bookmark. Favorites carry no counter, so
// only the join row moves; the unique index still serializes duplicates.
// Returns whether the meme is favorited after the call.
func (s *Service) ToggleFavorite(ctx context.Context, memeID, userID string, add bool) (bool, error) {
	favorited := false
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meme Meme
		err := tx.Select("id").Where("id = ?", memeID).Take(&meme).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemeNotFound
		}
		if err != nil {
			return err
		}

		if add {
			favoriteID, err := s.idProvider.NewID()
			if err != nil {
				return err
			}
			favorite := Favorite{ID: favoriteID, MemeID: memeID, UserID: userID}
			if err := tx.Create(&favorite).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyFavorited
				}
				return err
			}
			favorited = true
			return nil
		}

		result := tx.Where("meme_id = ? AND user_id = ?", memeID, userID).Delete(&Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFavorited
		}
		favorited = false
		return nil
	})
	if txErr != nil {
		return false, txErr
	}
	return favorited, nil
}

// HasFavorited reports whether the user has bookmarked the meme.
func (s *Service) HasFavorited(ctx context.Context, memeID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Favorite{}).
		Where("meme_id = ? AND user_id = ?", memeID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
