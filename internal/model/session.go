package model

import "time"

const (
	SessionPending      = "pending"
	SessionInterviewing = "interviewing"
	SessionAnalyzing    = "analyzing"
	SessionCompleted    = "completed"
)

// Session is one voice-interview-to-analysis cycle with one persona.
type Session struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	PersonaID   string     `gorm:"size:32;not null" json:"persona_id"`
	Status      string     `gorm:"size:16;not null" json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AudioURL    string     `gorm:"size:2048" json:"audio_url,omitempty"`
	Transcript  string     `gorm:"type:text" json:"transcript,omitempty"`
	Analysis    string     `gorm:"type:text" json:"analysis,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
