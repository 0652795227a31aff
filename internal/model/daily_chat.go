package model

import "time"

// DailyChat is a persona conversation scoped to a single journal entry.
// At most one chat exists per entry.
type DailyChat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EntryID   uint      `gorm:"not null;uniqueIndex" json:"entry_id"`
	PersonaID string    `gorm:"size:32;not null" json:"persona_id"`
	CreatedAt time.Time `json:"created_at"`
}

type DailyChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
