package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// TaskPublisher enqueues a background AI task for the worker.
type TaskPublisher interface {
	Publish(ctx context.Context, task model.Task) error
}

// TaskService records a task row before publishing so every scheduled job
// is visible in the store even if the broker loses the message.
type TaskService struct {
	taskRepo  *repository.TaskRepository
	publisher TaskPublisher
}

func NewTaskService(taskRepo *repository.TaskRepository, publisher TaskPublisher) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
	}
}

func (s *TaskService) Enqueue(ctx context.Context, task model.Task) (*model.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Status = model.TaskPending
	if err := s.taskRepo.Create(&task); err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return nil, ErrTaskEnqueue
	}
	if err := s.publisher.Publish(ctx, task); err != nil {
		return nil, ErrTaskEnqueue
	}
	return &task, nil
}
