package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// MarkRunning bumps the attempt counter in the same update so each delivery
// is accounted for even if the process dies mid-run.
func (r *TaskRepository) MarkRunning(id string) error {
	fields := map[string]interface{}{
		"status":   model.TaskRunning,
		"attempts": gorm.Expr("attempts + 1"),
	}
	if err := r.db.Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("mark task running failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) MarkCompleted(id string) error {
	if err := r.db.Model(&model.Task{}).Where("id = ?", id).Update("status", model.TaskCompleted).Error; err != nil {
		return fmt.Errorf("mark task completed failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) MarkFailed(id string, lastError string) error {
	fields := map[string]interface{}{
		"status":     model.TaskFailed,
		"last_error": lastError,
	}
	if err := r.db.Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("mark task failed failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) RecordError(id string, lastError string) error {
	if err := r.db.Model(&model.Task{}).Where("id = ?", id).Update("last_error", lastError).Error; err != nil {
		return fmt.Errorf("record task error failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks failed: %w", err)
	}
	return nil
}
