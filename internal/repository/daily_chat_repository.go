package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

type DailyChatRepository struct {
	db *gorm.DB
}

func NewDailyChatRepository(db *gorm.DB) *DailyChatRepository {
	return &DailyChatRepository{db: db}
}

func (r *DailyChatRepository) Create(chat *model.DailyChat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create daily chat failed: %w", err)
	}
	return nil
}

func (r *DailyChatRepository) GetByIDAndUserID(chatID, userID uint) (*model.DailyChat, error) {
	var chat model.DailyChat
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily chat failed: %w", err)
	}
	return &chat, nil
}

func (r *DailyChatRepository) GetByEntryID(entryID uint) (*model.DailyChat, error) {
	var chat model.DailyChat
	if err := r.db.Where("entry_id = ?", entryID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily chat by entry failed: %w", err)
	}
	return &chat, nil
}

func (r *DailyChatRepository) ListByUserID(userID uint) ([]model.DailyChat, error) {
	var chats []model.DailyChat
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list daily chats failed: %w", err)
	}
	return chats, nil
}

func (r *DailyChatRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.DailyChat{}).Error; err != nil {
		return fmt.Errorf("delete daily chats failed: %w", err)
	}
	return nil
}

func (r *DailyChatRepository) CreateMessage(message *model.DailyChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create daily chat message failed: %w", err)
	}
	return nil
}

func (r *DailyChatRepository) ListMessages(chatID uint) ([]model.DailyChatMessage, error) {
	var messages []model.DailyChatMessage
	if err := r.db.Where("chat_id = ?", chatID).Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list daily chat messages failed: %w", err)
	}
	return messages, nil
}

func (r *DailyChatRepository) DeleteMessagesByChatID(chatID uint) error {
	if err := r.db.Where("chat_id = ?", chatID).Delete(&model.DailyChatMessage{}).Error; err != nil {
		return fmt.Errorf("delete daily chat messages failed: %w", err)
	}
	return nil
}
