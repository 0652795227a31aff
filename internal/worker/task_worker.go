package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// TaskWorker consumes queued AI tasks and drives them through the
// runner. A failed task is requeued until its attempt count reaches
// maxAttempts, after which it is marked failed and abandoned.
type TaskWorker struct {
	conn        *amqp.Connection
	taskRepo    *repository.TaskRepository
	runner      *TaskRunner
	queueName   string
	maxAttempts int
	log         zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTaskWorker(conn *amqp.Connection, taskRepo *repository.TaskRepository, runner *TaskRunner, queueName string, maxAttempts int, log zerolog.Logger) *TaskWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TaskWorker{
		conn:        conn,
		taskRepo:    taskRepo,
		runner:      runner,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

func (w *TaskWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *TaskWorker) handle(ctx context.Context, d amqp.Delivery) {
	var envelope model.Task
	if err := json.Unmarshal(d.Body, &envelope); err != nil {
		w.log.Error().Err(err).Msg("worker decode task failed")
		_ = d.Nack(false, false)
		return
	}

	// The row is the source of truth; the queue message only carries
	// the id. A missing row means the account was deleted after enqueue.
	task, err := w.taskRepo.GetByID(envelope.ID)
	if err != nil {
		w.log.Error().Err(err).Str("task_id", envelope.ID).Msg("worker load task failed")
		_ = d.Nack(false, true)
		return
	}
	if task == nil || task.Status == model.TaskCompleted || task.Status == model.TaskFailed {
		_ = d.Ack(false)
		return
	}

	if err := w.taskRepo.MarkRunning(task.ID); err != nil {
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("worker mark running failed")
		_ = d.Nack(false, true)
		return
	}
	task.Attempts++

	if err := w.runner.Run(ctx, task); err != nil {
		w.log.Error().
			Err(err).
			Str("task_id", task.ID).
			Str("type", task.Type).
			Int("attempt", task.Attempts).
			Msg("task failed")

		if task.Attempts >= w.maxAttempts {
			if mErr := w.taskRepo.MarkFailed(task.ID, err.Error()); mErr != nil {
				w.log.Error().Err(mErr).Str("task_id", task.ID).Msg("worker mark failed")
			}
			w.runner.Abandon(task)
			_ = d.Ack(false)
			return
		}

		if rErr := w.taskRepo.RecordError(task.ID, err.Error()); rErr != nil {
			w.log.Error().Err(rErr).Str("task_id", task.ID).Msg("worker record error failed")
		}
		_ = d.Nack(false, true)
		return
	}

	if err := w.taskRepo.MarkCompleted(task.ID); err != nil {
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("worker mark completed failed")
	}
	_ = d.Ack(false)
}

func (w *TaskWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
