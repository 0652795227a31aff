package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByIDAndUserID(sessionID, userID uint) (*model.Session, error) {
	var session model.Session
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByUserID(userID uint) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) UpdateStatus(sessionID uint, status string) error {
	if err := r.db.Model(&model.Session{}).Where("id = ?", sessionID).Update("status", status).Error; err != nil {
		return fmt.Errorf("update session status failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) SaveAudioURL(sessionID uint, url string) error {
	if err := r.db.Model(&model.Session{}).Where("id = ?", sessionID).Update("audio_url", url).Error; err != nil {
		return fmt.Errorf("save session audio url failed: %w", err)
	}
	return nil
}

// AppendTranscript adds one "Q: ...\nA: ..." block, blank-line separated
// from whatever came before.
func (r *SessionRepository) AppendTranscript(sessionID uint, text string) error {
	var session model.Session
	if err := r.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("append transcript: session %d not found", sessionID)
		}
		return fmt.Errorf("append transcript failed: %w", err)
	}

	transcript := text
	if session.Transcript != "" {
		transcript = session.Transcript + "\n\n" + text
	}
	if err := r.db.Model(&model.Session{}).Where("id = ?", sessionID).Update("transcript", transcript).Error; err != nil {
		return fmt.Errorf("append transcript failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) SaveAnalysis(sessionID uint, analysis string) error {
	now := time.Now()
	fields := map[string]interface{}{
		"analysis":     analysis,
		"status":       model.SessionCompleted,
		"completed_at": &now,
	}
	if err := r.db.Model(&model.Session{}).Where("id = ?", sessionID).Updates(fields).Error; err != nil {
		return fmt.Errorf("save session analysis failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete sessions failed: %w", err)
	}
	return nil
}
