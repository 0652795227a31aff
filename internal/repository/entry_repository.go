package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(entry *model.Entry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create entry failed: %w", err)
	}
	return nil
}

func (r *EntryRepository) GetByIDAndUserID(entryID, userID uint) (*model.Entry, error) {
	var entry model.Entry
	if err := r.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry failed: %w", err)
	}
	return &entry, nil
}

func (r *EntryRepository) ListByUserID(userID uint) ([]model.Entry, error) {
	var entries []model.Entry
	if err := r.db.Where("user_id = ?", userID).Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries failed: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Entry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count entries failed: %w", err)
	}
	return count, nil
}

func (r *EntryRepository) GetByUserIDAndDate(userID uint, date string) (*model.Entry, error) {
	var entry model.Entry
	if err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry by date failed: %w", err)
	}
	return &entry, nil
}

func (r *EntryRepository) Updates(entryID, userID uint, fields map[string]interface{}) error {
	if err := r.db.Model(&model.Entry{}).Where("id = ? AND user_id = ?", entryID, userID).Updates(fields).Error; err != nil {
		return fmt.Errorf("update entry failed: %w", err)
	}
	return nil
}

func (r *EntryRepository) DeleteByIDAndUserID(entryID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", entryID, userID).Delete(&model.Entry{}).Error; err != nil {
		return fmt.Errorf("delete entry failed: %w", err)
	}
	return nil
}

func (r *EntryRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Entry{}).Error; err != nil {
		return fmt.Errorf("delete entries failed: %w", err)
	}
	return nil
}
