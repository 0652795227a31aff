package model

import "time"

const (
	TaskAnalyzeSession     = "analyze_session"
	TaskGenerateReply      = "generate_reply"
	TaskGenerateDailyReply = "generate_daily_reply"
	TaskUpdateSummary      = "update_summary"
)

const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// Task records one background AI job so a crashed or failed run is
// observably retriable instead of silently stuck.
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Type      string    `gorm:"size:32;not null;index" json:"type"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SessionID uint      `gorm:"index" json:"session_id,omitempty"`
	ChatID    uint      `gorm:"index" json:"chat_id,omitempty"`
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	Status    string    `gorm:"size:16;not null;index" json:"status"`
	Attempts  int       `gorm:"not null" json:"attempts"`
	LastError string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
