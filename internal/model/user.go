package model

import "time"

const (
	SubscriptionFree    = "free"
	SubscriptionActive  = "active"
	SubscriptionPastDue = "past_due"
)

type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	TokenIdentifier      string    `gorm:"size:191;not null;uniqueIndex" json:"-"`
	Name                 string    `gorm:"size:128" json:"name"`
	Email                string    `gorm:"size:128" json:"email"`
	SubscriptionStatus   string    `gorm:"size:16;not null;default:free" json:"subscription_status"`
	SubscriptionID       string    `gorm:"size:128" json:"subscription_id,omitempty"`
	Summary              string    `gorm:"type:text" json:"summary,omitempty"`
	DefaultPersonaID     string    `gorm:"size:32" json:"default_persona_id,omitempty"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	OnboardingCompleted  bool      `json:"onboarding_completed"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
