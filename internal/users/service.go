package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("users: user not found")
	// ErrInvalidProfile indicates the provider profile lacked a usable id.
	ErrInvalidProfile = errors.New("users: invalid provider profile")

	fallbackUsername = "用户"
)

// Profile is the identity payload fetched from the OAuth provider.
type Profile struct {
	ID       string
	Username string
	Avatar   string
}

// Tokens carries the provider credentials stored alongside the user.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// ServiceConfig describes the dependencies required for user management.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Service manages provider-supplied user identities.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock}, nil
}

// UpsertFromProvider creates the user on first login and refreshes
// username, avatar and tokens on every subsequent login.
func (s *Service) UpsertFromProvider(ctx context.Context, profile Profile, tokens Tokens) (User, error) {
	id := strings.TrimSpace(profile.ID)
	if id == "" {
		return User{}, ErrInvalidProfile
	}

	username := strings.TrimSpace(profile.Username)
	if username == "" {
		username = fallbackUsername
	}

	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{
			ID:           id,
			Username:     username,
			Avatar:       strings.TrimSpace(profile.Avatar),
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return User{}, err
		}
		return user, nil
	}
	if err != nil {
		return User{}, err
	}

	updates := map[string]interface{}{
		"username":      username,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"updated_at":    s.now(),
	}
	if avatar := strings.TrimSpace(profile.Avatar); avatar != "" {
		updates["avatar"] = avatar
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return User{}, err
	}

	err = s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, err
}

// GetByID returns the stored user or ErrUserNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// IsAdmin reports whether the user holds the admin flag. Unknown users are
// never admins.
func (s *Service) IsAdmin(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	var isAdmin bool
	err := s.db.WithContext(ctx).Model(&User{}).
		Select("is_admin").
		Where("id = ?", id).
		Scan(&isAdmin).Error
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// Count returns the total number of registered users.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&User{}).Count(&total).Error
	return total, err
}
