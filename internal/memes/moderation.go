package memes

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetStatus overwrites the moderation status of a meme. Any status may be
// rewritten to any other; the vote counter is untouched.
func (s *Service) SetStatus(ctx context.Context, memeID string, status Status) (Meme, error) {
	result := s.db.WithContext(ctx).Model(&Meme{}).
		Where("id = ?", memeID).
		Update("status", status)
	if result.Error != nil {
		return Meme{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Meme{}, ErrMemeNotFound
	}

	var meme Meme
	err := s.db.WithContext(ctx).Preload("CreatedBy").Where("id = ?", memeID).First(&meme).Error
	return meme, err
}

// Delete removes a meme together with its votes, comments and favorites in
// one transaction, so aggregate counts never see orphaned rows.
func (s *Service) Delete(ctx context.Context, memeID string) error {
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meme Meme
		err := tx.Select("id").Where("id = ?", memeID).Take(&meme).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemeNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Where("meme_id = ?", memeID).Delete(&Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meme_id = ?", memeID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meme_id = ?", memeID).Delete(&Favorite{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", memeID).Delete(&Meme{}).Error
	})
	if txErr != nil && !errors.Is(txErr, ErrMemeNotFound) {
		s.logger.Error("meme cascade delete failed", zap.String("meme_id", memeID), zap.Error(txErr))
	}
	return txErr
}

// AdminMeme decorates a meme with its dependent-row counts for the admin
// listing.
type AdminMeme struct {
	Meme
	VoteRows    int64 `json:"voteRows"`
	CommentRows int64 `json:"commentRows"`
}

// AdminList returns memes of any status (or one status) newest-first with
// vote and comment counts attached.
func (s *Service) AdminList(ctx context.Context, status string, page, limit int) ([]AdminMeme, Pagination, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.WithContext(ctx).Model(&Meme{})
	if parsed, ok := ParseStatus(status); ok {
		query = query.Where("status = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var rows []Meme
	err := query.Preload("CreatedBy").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	result := make([]AdminMeme, 0, len(rows))
	for _, row := range rows {
		entry := AdminMeme{Meme: row}
		if err := s.db.WithContext(ctx).Model(&Vote{}).Where("meme_id = ?", row.ID).Count(&entry.VoteRows).Error; err != nil {
			return nil, Pagination{}, err
		}
		if err := s.db.WithContext(ctx).Model(&Comment{}).Where("meme_id = ?", row.ID).Count(&entry.CommentRows).Error; err != nil {
			return nil, Pagination{}, err
		}
		result = append(result, entry)
	}
	return result, paginationFor(page, limit, total), nil
}

// Stats aggregates the counters surfaced on the admin dashboard. The user
// total is supplied by the caller so this package does not reach into the
// users table.
type Stats struct {
	TotalMemes    int64 `json:"totalMemes"`
	PendingMemes  int64 `json:"pendingMemes"`
	ApprovedMemes int64 `json:"approvedMemes"`
	RejectedMemes int64 `json:"rejectedMemes"`
	TotalVotes    int64 `json:"totalVotes"`
	TotalComments int64 `json:"totalComments"`
}

// CollectStats counts memes by status plus total votes and comments.
func (s *Service) CollectStats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&Meme{}).Count(&stats.TotalMemes).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&Meme{}).Where("status = ?", StatusPending).Count(&stats.PendingMemes).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&Meme{}).Where("status = ?", StatusApproved).Count(&stats.ApprovedMemes).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&Meme{}).Where("status = ?", StatusRejected).Count(&stats.RejectedMemes).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&Comment{}).Count(&stats.TotalComments).Error; err != nil {
		return Stats{}, err
	}
	return stats, nil
}
