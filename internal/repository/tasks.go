package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusCreated        TaskStatus = "CREATED"
	TaskStatusProcessing     TaskStatus = "PROCESSING"
	TaskStatusFailed         TaskStatus = "FAILED"
	TaskStatusNoAttemptsLeft TaskStatus = "NO_ATTEMPTS_LEFT"
)

// Task is an outbox row carrying one encoded transition event.
type Task struct {
	ID            string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Payload       []byte
	Status        TaskStatus
	AttemptCount  int
	NextAttemptAt sql.NullTime
}

type TaskRepository interface {
	CreateTask(ctx context.Context, id string, payload []byte) error
	GetPendingTasks(ctx context.Context, limit, maxAttempts int) ([]*Task, error)
	MarkTaskProcessing(ctx context.Context, taskID string) error
	DeleteTask(ctx context.Context, taskID string) error
	UpdateTaskFailure(ctx context.Context, taskID string, attemptCount int, newStatus TaskStatus, nextAttemptAt time.Time) error
}

type SQLTaskRepository struct {
	db *sql.DB
}

func NewSQLTaskRepository(db *sql.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

func (r *SQLTaskRepository) CreateTask(ctx context.Context, id string, payload []byte) error {
	return insertTask(ctx, r.db, id, payload, utcNow())
}

func insertTask(ctx context.Context, q querier, id string, payload []byte, now time.Time) error {
	query := `
		INSERT INTO tasks (id, created_at, updated_at, payload, status, attempt_count)
		VALUES ($1, $2, $3, $4, $5, 0)
	`
	_, err := q.ExecContext(ctx, query, id, now, now, string(payload), TaskStatusCreated)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *SQLTaskRepository) GetPendingTasks(ctx context.Context, limit, maxAttempts int) ([]*Task, error) {
	query := `
		SELECT id, created_at, updated_at, payload, status, attempt_count, next_attempt_at
		FROM tasks
		WHERE status IN ($1, $2)
		  AND (next_attempt_at IS NULL OR next_attempt_at <= $3)
		  AND attempt_count < $4
		ORDER BY created_at
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query, TaskStatusCreated, TaskStatusFailed, utcNow(), maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t := &Task{}
		var payload string
		if err := rows.Scan(&t.ID, &t.CreatedAt,
			&t.UpdatedAt, &payload, &t.Status,
			&t.AttemptCount, &t.NextAttemptAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Payload = []byte(payload)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLTaskRepository) MarkTaskProcessing(ctx context.Context, taskID string) error {
	query := `
		UPDATE tasks SET status = $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, TaskStatusProcessing, utcNow(), taskID)
	return err
}

func (r *SQLTaskRepository) DeleteTask(ctx context.Context, taskID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	return err
}

func (r *SQLTaskRepository) UpdateTaskFailure(ctx context.Context, taskID string, attemptCount int, newStatus TaskStatus, nextAttemptAt time.Time) error {
	query := `
		UPDATE tasks
		SET status = $1, attempt_count = $2, updated_at = $3, next_attempt_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, newStatus, attemptCount, utcNow(), nextAttemptAt.UTC(), taskID)
	return err
}
