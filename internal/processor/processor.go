package taskprocessor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bizflow/internal/events"
	"bizflow/internal/repository"
)

type Publisher interface {
	Publish(topic, key string, message []byte) error
}

// TaskProcessor drains the outbox table into Kafka.
type TaskProcessor struct {
	repo         repository.TaskRepository
	producer     Publisher
	topic        string
	format       events.Format
	pollInterval time.Duration
	limit        int
	maxAttempts  int
	retryDelay   time.Duration
	logger       *zap.Logger
}

func NewTaskProcessor(repo repository.TaskRepository, producer Publisher, topic string, format events.Format, pollInterval time.Duration, limit int, logger *zap.Logger) *TaskProcessor {
	return &TaskProcessor{
		repo:         repo,
		producer:     producer,
		topic:        topic,
		format:       format,
		pollInterval: pollInterval,
		limit:        limit,
		maxAttempts:  3,
		retryDelay:   2 * time.Second,
		logger:       logger,
	}
}

func (p *TaskProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessPendingTasks(ctx)
		}
	}
}

func (p *TaskProcessor) ProcessPendingTasks(ctx context.Context) {
	tasks, err := p.repo.GetPendingTasks(ctx, p.limit, p.maxAttempts)
	if err != nil {
		p.logger.Error("fetch pending tasks", zap.Error(err))
		return
	}
	for _, task := range tasks {
		if err := p.repo.MarkTaskProcessing(ctx, task.ID); err != nil {
			p.logger.Error("mark task processing", zap.String("task_id", task.ID), zap.Error(err))
			continue
		}

		msg, key, err := p.encode(task.Payload)
		if err != nil {
			// a payload that cannot be decoded will never succeed
			p.logger.Error("drop undecodable task", zap.String("task_id", task.ID), zap.Error(err))
			p.fail(ctx, task, p.maxAttempts)
			continue
		}

		if err := p.producer.Publish(p.topic, key, msg); err != nil {
			p.logger.Warn("publish task", zap.String("task_id", task.ID), zap.Error(err))
			p.fail(ctx, task, task.AttemptCount+1)
			continue
		}
		p.logger.Debug("task published", zap.String("task_id", task.ID))
		if err := p.repo.DeleteTask(ctx, task.ID); err != nil {
			p.logger.Error("delete published task", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
}

func (p *TaskProcessor) encode(payload []byte) ([]byte, string, error) {
	e, err := events.Decode(payload, events.FormatJSON)
	if err != nil {
		return nil, "", err
	}
	if p.format == events.FormatJSON {
		return payload, e.RecordID, nil
	}
	msg, err := events.Encode(e, p.format)
	return msg, e.RecordID, err
}

func (p *TaskProcessor) fail(ctx context.Context, task *repository.Task, attempt int) {
	newStatus := repository.TaskStatusFailed
	if attempt >= p.maxAttempts {
		newStatus = repository.TaskStatusNoAttemptsLeft
	}
	nextAttempt := time.Now().Add(p.retryDelay)
	if err := p.repo.UpdateTaskFailure(ctx, task.ID, attempt, newStatus, nextAttempt); err != nil {
		p.logger.Error("update failed task", zap.String("task_id", task.ID), zap.Error(err))
	}
}
