// Package ratelimit implements the per-user daily counter that gates calls
// to paid AI endpoints. One row per (user, action, UTC day); the increment
// is a single conditional UPDATE so two concurrent calls cannot both observe
// the pre-increment count.
package ratelimit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

const (
	ActionTranscription   = "transcription"
	ActionAnalysis        = "analysis"
	ActionChatReply       = "chat_reply"
	ActionDailyReflection = "daily_reflection"
)

type Result struct {
	Allowed bool `json:"allowed"`
	Count   int  `json:"count"`
}

type Limiter struct {
	db *gorm.DB
}

func NewLimiter(db *gorm.DB) *Limiter {
	return &Limiter{db: db}
}

// Allow consumes one unit of the user's daily budget for action. When the
// ceiling is reached it reports Allowed=false and leaves the count untouched.
func (l *Limiter) Allow(userID uint, action string, limit int) (Result, error) {
	if limit <= 0 {
		return Result{Allowed: false, Count: 0}, nil
	}

	now := time.Now().UTC()
	key := Key(userID, action, now)

	res, err := l.increment(key, limit)
	if err != nil {
		return Result{}, err
	}
	if res != nil {
		return *res, nil
	}

	// No row yet for this day. Insert count=1; a concurrent insert loses on
	// the unique key and falls back to the conditional update.
	row := &model.RateLimit{Key: key, Count: 1, LastReset: now}
	if err := l.db.Create(row).Error; err == nil {
		return Result{Allowed: true, Count: 1}, nil
	}

	res, err = l.increment(key, limit)
	if err != nil {
		return Result{}, err
	}
	if res != nil {
		return *res, nil
	}
	return Result{}, fmt.Errorf("rate limit row for %q unreachable", key)
}

// increment runs the conditional UPDATE. Returns nil when no row exists,
// a rejected Result when the row is at the ceiling.
func (l *Limiter) increment(key string, limit int) (*Result, error) {
	tx := l.db.Model(&model.RateLimit{}).
		Where("`key` = ? AND count < ?", key, limit).
		Update("count", gorm.Expr("count + 1"))
	if tx.Error != nil {
		return nil, fmt.Errorf("increment rate limit failed: %w", tx.Error)
	}

	var row model.RateLimit
	err := l.db.Where("`key` = ?", key).First(&row).Error
	if tx.RowsAffected == 1 {
		if err != nil {
			return nil, fmt.Errorf("read rate limit failed: %w", err)
		}
		return &Result{Allowed: true, Count: row.Count}, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rate limit failed: %w", err)
	}
	return &Result{Allowed: false, Count: row.Count}, nil
}

// DeleteByUserID removes every counter whose key is prefixed by the user id.
func (l *Limiter) DeleteByUserID(userID uint) error {
	// Underscore is a LIKE wildcard, escape it so user 1 cannot match user 10.
	prefix := fmt.Sprintf("%d!_%%", userID)
	if err := l.db.Where("`key` LIKE ? ESCAPE '!'", prefix).Delete(&model.RateLimit{}).Error; err != nil {
		return fmt.Errorf("delete rate limits failed: %w", err)
	}
	return nil
}

func Key(userID uint, action string, t time.Time) string {
	return fmt.Sprintf("%d_%s_%s", userID, action, t.UTC().Format("2006-01-02"))
}
