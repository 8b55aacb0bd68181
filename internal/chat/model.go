package chat

import (
	"time"

	"github.com/memelab/memehub/internal/users"
)

// SystemOwnerID is the sentinel owner of the preset characters.
const SystemOwnerID = "system"

// Character is a scripted chat personality. Personality is free text used
// only as descriptive copy; replies come from a fixed lookup table.
type Character struct {
	ID          string      `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Name        string      `gorm:"column:name;size:100;not null" json:"name"`
	Personality string      `gorm:"column:personality;type:text;not null" json:"personality"`
	Avatar      string      `gorm:"column:avatar;size:512" json:"avatar"`
	CreatedByID string      `gorm:"column:created_by_id;size:190;not null;index" json:"createdById"`
	CreatedBy   *users.User `gorm:"foreignKey:CreatedByID;references:ID" json:"createdBy,omitempty"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Character) TableName() string {
	return "ai_characters"
}

// Message is one side of a conversation between a user and a character.
type Message struct {
	ID          string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	CharacterID string     `gorm:"column:character_id;size:190;not null;index:idx_messages_character_user,priority:1" json:"characterId"`
	Character   *Character `gorm:"foreignKey:CharacterID;references:ID;constraint:OnDelete:CASCADE" json:"character,omitempty"`
	UserID      string     `gorm:"column:user_id;size:190;not null;index:idx_messages_character_user,priority:2" json:"userId"`
	Content     string     `gorm:"column:content;type:text;not null" json:"message"`
	IsFromAI    bool       `gorm:"column:is_from_ai;not null;default:false" json:"isFromAI"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Message) TableName() string {
	return "chat_messages"
}
