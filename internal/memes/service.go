package memes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize    = 20
	maxPageSize        = 100
	searchResultLimit  = 20
	relatedMemesLimit  = 4
	defaultRankingSize = 10
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceConfig describes the dependencies of the meme service.
type ServiceConfig struct {
	Database    *gorm.DB
	Clock       func() time.Time
	IDProvider  IDProvider
	Logger      *zap.Logger
	AutoApprove bool
}

// Service implements submission, voting, querying and moderation over memes.
type Service struct {
	db          *gorm.DB
	clock       func() time.Time
	idProvider  IDProvider
	logger      *zap.Logger
	autoApprove bool
}

// NewService constructs the meme service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("memes: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("memes: %w", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:          cfg.Database,
		clock:       clock,
		idProvider:  cfg.IDProvider,
		logger:      logger,
		autoApprove: cfg.AutoApprove,
	}, nil
}

// SubmitRequest carries a new submission.
type SubmitRequest struct {
	Title    string
	Content  string
	Tags     string
	ImageURL string
}

// Submit validates and stores a new meme. Submissions are published
// immediately when auto-approve is enabled and held as pending otherwise.
func (s *Service) Submit(ctx context.Context, userID string, request SubmitRequest) (Meme, error) {
	title := strings.TrimSpace(request.Title)
	content := strings.TrimSpace(request.Content)

	if title == "" {
		return Meme{}, newValidationError("title", "must not be empty")
	}
	if len([]rune(title)) > maxTitleLength {
		return Meme{}, newValidationError("title", fmt.Sprintf("must not exceed %d characters", maxTitleLength))
	}
	if content == "" {
		return Meme{}, newValidationError("content", "must not be empty")
	}
	if len([]rune(content)) > maxContentLength {
		return Meme{}, newValidationError("content", fmt.Sprintf("must not exceed %d characters", maxContentLength))
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		return Meme{}, err
	}

	status := StatusPending
	if s.autoApprove {
		status = StatusApproved
	}

	meme := Meme{
		ID:          id,
		Title:       title,
		Content:     content,
		Tags:        strings.TrimSpace(request.Tags),
		ImageURL:    strings.TrimSpace(request.ImageURL),
		Status:      status,
		VoteCount:   0,
		CreatedByID: userID,
	}

	if err := s.db.WithContext(ctx).Create(&meme).Error; err != nil {
		s.logger.Error("meme create failed", zap.String("user_id", userID), zap.Error(err))
		return Meme{}, err
	}
	return meme, nil
}

// SortOrder selects the listing order.
type SortOrder string

const (
	SortHot SortOrder = "hot"
	SortNew SortOrder = "new"
)

// ListRequest describes a public listing query.
type ListRequest struct {
	Sort  SortOrder
	Tag   string
	Page  int
	Limit int
}

// Pagination is the envelope shared by paginated listings.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func paginationFor(page, limit int, total int64) Pagination {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// List returns approved memes sorted hot (vote count) or new (recency),
// optionally filtered by tag substring.
func (s *Service) List(ctx context.Context, request ListRequest) ([]Meme, Pagination, error) {
	page, limit := normalizePage(request.Page, request.Limit)

	query := s.db.WithContext(ctx).Model(&Meme{}).Where("status = ?", StatusApproved)
	if tag := strings.TrimSpace(request.Tag); tag != "" {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	order := "vote_count DESC, created_at DESC"
	if request.Sort == SortNew {
		order = "created_at DESC"
	}

	var result []Meme
	err := query.Preload("CreatedBy").
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return result, paginationFor(page, limit, total), nil
}

// Get returns an approved meme and up to four related memes sharing its
// first tag or author, best-voted first.
func (s *Service) Get(ctx context.Context, memeID string) (Meme, []Meme, error) {
	var meme Meme
	err := s.db.WithContext(ctx).Preload("CreatedBy").
		Where("id = ? AND status = ?", memeID, StatusApproved).
		First(&meme).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Meme{}, nil, ErrMemeNotFound
	}
	if err != nil {
		return Meme{}, nil, err
	}

	related := s.db.WithContext(ctx).Preload("CreatedBy").
		Where("id <> ? AND status = ?", memeID, StatusApproved)
	if firstTag := meme.FirstTag(); firstTag != "" {
		related = related.Where("tags LIKE ? OR created_by_id = ?", "%"+firstTag+"%", meme.CreatedByID)
	} else {
		related = related.Where("created_by_id = ?", meme.CreatedByID)
	}

	var relatedMemes []Meme
	err = related.Order("vote_count DESC").Limit(relatedMemesLimit).Find(&relatedMemes).Error
	if err != nil {
		return Meme{}, nil, err
	}
	return meme, relatedMemes, nil
}

// Search matches the query as a substring of title, content or tags over
// approved memes, best-voted first.
func (s *Service) Search(ctx context.Context, query string) ([]Meme, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return nil, newValidationError("q", "must not be empty")
	}

	pattern := "%" + term + "%"
	var result []Meme
	err := s.db.WithContext(ctx).Preload("CreatedBy").
		Where("status = ?", StatusApproved).
		Where("title LIKE ? OR content LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Order("vote_count DESC").
		Limit(searchResultLimit).
		Find(&result).Error
	return result, err
}

// RankingType selects the leaderboard time window.
type RankingType string

const (
	// RankingToday covers the last 24 hours.
	RankingToday RankingType = "today"
	// RankingAllTime covers every approved meme.
	RankingAllTime RankingType = "alltime"
	// RankingRising covers the last 7 days.
	RankingRising RankingType = "rising"
)

// ParseRankingType validates a raw ranking type value.
func ParseRankingType(raw string) (RankingType, bool) {
	switch RankingType(strings.ToLower(strings.TrimSpace(raw))) {
	case RankingToday:
		return RankingToday, true
	case RankingAllTime:
		return RankingAllTime, true
	case RankingRising:
		return RankingRising, true
	default:
		return "", false
	}
}

// Rankings returns the approved memes of the requested window sorted by
// descending vote count.
func (s *Service) Rankings(ctx context.Context, rankingType RankingType, limit int) ([]Meme, error) {
	if limit < 1 {
		limit = defaultRankingSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := s.db.WithContext(ctx).Preload("CreatedBy").Where("status = ?", StatusApproved)
	switch rankingType {
	case RankingToday:
		query = query.Where("created_at >= ?", s.clock().Add(-24*time.Hour))
	case RankingRising:
		query = query.Where("created_at >= ?", s.clock().Add(-7*24*time.Hour))
	case RankingAllTime:
	default:
		return nil, newValidationError("type", "must be one of today, alltime, rising")
	}

	var result []Meme
	err := query.Order("vote_count DESC, created_at DESC").Limit(limit).Find(&result).Error
	return result, err
}

// ListByAuthor returns every submission of the given user, newest first,
// regardless of moderation status.
func (s *Service) ListByAuthor(ctx context.Context, userID string) ([]Meme, error) {
	var result []Meme
	err := s.db.WithContext(ctx).Preload("CreatedBy").
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

// ListFavorites returns the memes the user has favorited, newest favorite
// first.
func (s *Service) ListFavorites(ctx context.Context, userID string, page, limit int) ([]Meme, Pagination, error) {
	page, limit = normalizePage(page, limit)

	var total int64
	if err := s.db.WithContext(ctx).Model(&Favorite{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var favorites []Favorite
	err := s.db.WithContext(ctx).
		Preload("Meme").Preload("Meme.CreatedBy").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	result := make([]Meme, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Meme != nil {
			result = append(result, *favorite.Meme)
		}
	}
	return result, paginationFor(page, limit, total), nil
}

// ListVotes returns the user's vote history, newest first, with the voted
// memes attached.
func (s *Service) ListVotes(ctx context.Context, userID string) ([]Vote, error) {
	var votes []Vote
	err := s.db.WithContext(ctx).
		Preload("Meme").Preload("Meme.CreatedBy").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&votes).Error
	return votes, err
}
