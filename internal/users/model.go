package users

import "time"

// User anchors identity for the application. The id is supplied by the
// external OAuth provider; rows are created on first login and refreshed on
// re-login, never hard-deleted.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Username     string    `gorm:"column:username;size:190;not null" json:"username"`
	Avatar       string    `gorm:"column:avatar;size:512" json:"avatar"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"isAdmin"`
	AccessToken  string    `gorm:"column:access_token;size:2048" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token;size:2048" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// PublicUser is the projection embedded in meme and comment payloads.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Public strips token material from a User.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
