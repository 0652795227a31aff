package model

import "time"

// Entry is one day of journaling. DayNumber cycles 1..7; the cycle has no
// entity of its own, the counter wraps silently.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;index:idx_entries_user_date,priority:1" json:"user_id"`
	Title     string    `gorm:"size:256" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Date      string    `gorm:"size:10;not null;index:idx_entries_user_date,priority:2" json:"date"`
	DayNumber int       `gorm:"not null" json:"day_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
