package models

import (
	"time"
)

// SystemSetting stores one portal setting as a JSON blob
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// ChatSession binds a browser and chat surface to the session id the
// automation backend uses to keep conversation state
type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_chat_sessions_client_surface" json:"client_id"`
	Surface   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_chat_sessions_client_surface" json:"surface"`
	SessionID string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is one line of a chat transcript
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(64);not null;index" json:"session_id"`
	Role      string    `gorm:"type:varchar(10);not null" json:"role"` // user, bot
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// All lists the models owned by the portal database.
func All() []interface{} {
	return []interface{}{
		&SystemSetting{},
		&ChatSession{},
		&ChatMessage{},
	}
}
