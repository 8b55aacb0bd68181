package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrCharacterNotFound indicates the referenced character does not exist.
	ErrCharacterNotFound = errors.New("chat: character not found")
	// ErrEmptyMessage rejects blank chat messages.
	ErrEmptyMessage = errors.New("chat: message must not be empty")
	// ErrInvalidCharacter rejects character creation with missing fields.
	ErrInvalidCharacter = errors.New("chat: name and personality are required")
)

// cannedReplies is the full reply table. The "AI" is a deterministic lookup
// keyed by message length, not a language model.
var cannedReplies = []string{
	"哈哈，这确实很有趣！",
	"你说的这个梗我知道，太经典了！",
	"等等，这是什么新梗吗？",
	"作为一个AI，我觉得这个梗很有创意！",
	"这个梗可以火！",
	"太有梗了，我要记下来！",
	"哈哈哈，笑不活了！",
	"这个梗有点东西啊！",
	"我觉得这个梗可以出圈！",
	"这届网友太有才了！",
}

// PickReply selects the canned reply for a user message. The choice depends
// only on the message's rune count, so the same message always gets the same
// reply.
func PickReply(userMessage string) string {
	index := len([]rune(userMessage)) % len(cannedReplies)
	return cannedReplies[index]
}

// IDProvider issues identifiers for newly created rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the chat service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
}

// Service manages scripted chat characters and their conversations.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
}

// NewService constructs the chat service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("chat: database connection required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("chat: id provider required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, clock: clock, idProvider: cfg.IDProvider}, nil
}

// ListCharacters returns the system presets plus the caller's own
// characters, newest first. An empty userID returns presets only.
func (s *Service) ListCharacters(ctx context.Context, userID string) ([]Character, error) {
	query := s.db.WithContext(ctx).Preload("CreatedBy")
	if strings.TrimSpace(userID) == "" {
		query = query.Where("created_by_id = ?", SystemOwnerID)
	} else {
		query = query.Where("created_by_id IN ?", []string{SystemOwnerID, userID})
	}

	var characters []Character
	err := query.Order("created_at DESC").Find(&characters).Error
	return characters, err
}

// CreateCharacter stores a user-owned character.
func (s *Service) CreateCharacter(ctx context.Context, userID, name, personality, avatar string) (Character, error) {
	name = strings.TrimSpace(name)
	personality = strings.TrimSpace(personality)
	if name == "" || personality == "" {
		return Character{}, ErrInvalidCharacter
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		return Character{}, err
	}
	character := Character{
		ID:          id,
		Name:        name,
		Personality: personality,
		Avatar:      strings.TrimSpace(avatar),
		CreatedByID: userID,
	}
	if err := s.db.WithContext(ctx).Create(&character).Error; err != nil {
		return Character{}, err
	}
	return character, nil
}

// ListMessages returns the conversation between the user and the character,
// oldest first.
func (s *Service) ListMessages(ctx context.Context, characterID, userID string) ([]Message, error) {
	var messages []Message
	err := s.db.WithContext(ctx).Preload("Character").
		Where("character_id = ? AND user_id = ?", characterID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// SendMessage stores the user message and the scripted reply as one
// transaction, so a conversation never holds a question without its answer.
func (s *Service) SendMessage(ctx context.Context, characterID, userID, content string) (Message, Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, Message{}, ErrEmptyMessage
	}

	var userMessage, aiMessage Message
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var character Character
		err := tx.Where("id = ?", characterID).Take(&character).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCharacterNotFound
		}
		if err != nil {
			return err
		}

		userMessageID, err := s.idProvider.NewID()
		if err != nil {
			return err
		}
		userMessage = Message{
			ID:          userMessageID,
			CharacterID: characterID,
			UserID:      userID,
			Content:     trimmed,
			IsFromAI:    false,
			CreatedAt:   s.clock(),
		}
		if err := tx.Create(&userMessage).Error; err != nil {
			return err
		}

		aiMessageID, err := s.idProvider.NewID()
		if err != nil {
			return err
		}
		aiMessage = Message{
			ID:          aiMessageID,
			CharacterID: characterID,
			UserID:      userID,
			Content:     PickReply(trimmed),
			IsFromAI:    true,
			CreatedAt:   s.clock(),
		}
		if err := tx.Create(&aiMessage).Error; err != nil {
			return err
		}
		aiMessage.Character = &character
		return nil
	})
	if txErr != nil {
		return Message{}, Message{}, txErr
	}
	return userMessage, aiMessage, nil
}
