package model

import "time"

// RateLimit is a per-user per-action per-UTC-day counter gating calls to
// paid AI endpoints. Key format: {userID}_{action}_{YYYY-MM-DD}.
type RateLimit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:128;not null;uniqueIndex" json:"key"`
	Count     int       `gorm:"not null" json:"count"`
	LastReset time.Time `json:"last_reset"`
}
