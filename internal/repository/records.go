package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizflow/internal/models"
)

// ErrStaleStatus means the record left the expected status before the
// update landed, typically a double submit.
var ErrStaleStatus = errors.New("record status changed concurrently")

type ListFilter struct {
	Kind   models.Kind
	Status models.Status
	Cursor string
	Limit  int64
}

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, kind, status, title, created_at, updated_at`

func scanRecord(s scanner) (*models.Record, error) {
	r := &models.Record{}
	if err := s.Scan(&r.ID, &r.Kind, &r.Status, &r.Title, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RecordRepository) Create(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (` + recordColumns + `) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Kind, rec.Status, rec.Title, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	return getRecord(ctx, r.db, kind, id)
}

func getRecord(ctx context.Context, q querier, kind models.Kind, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE kind=$1 AND id=$2`
	rec, err := scanRecord(q.QueryRowContext(ctx, query, kind, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	return rec, nil
}

// List pages by id: pass the last id of the previous page as Cursor.
func (r *RecordRepository) List(ctx context.Context, f ListFilter) ([]*models.Record, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	var filters []string
	var args []interface{}
	idx := 1

	if f.Kind != "" {
		filters = append(filters, fmt.Sprintf("kind=$%d", idx))
		args = append(args, f.Kind)
		idx++
	}
	if f.Status != "" {
		filters = append(filters, fmt.Sprintf("status=$%d", idx))
		args = append(args, f.Status)
		idx++
	}
	if f.Cursor != "" {
		filters = append(filters, fmt.Sprintf("id>$%d", idx))
		args = append(args, f.Cursor)
		idx++
	}

	query := `SELECT ` + recordColumns + ` FROM records`
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", idx)
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return res, nil
}

func (r *RecordRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE kind=$1 AND id=$2`, kind, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// TransitionWrite is everything persisted by one status change.
type TransitionWrite struct {
	Transition models.Transition
	Activity   models.Activity
	Payload    []byte
	TaskID     string
}

// ApplyTransition moves the record from t.From to t.To and appends history,
// activity and an outbox task in one transaction. The update only matches
// while the record is still in t.From.
func (r *RecordRepository) ApplyTransition(ctx context.Context, w TransitionWrite) (*models.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	t := w.Transition
	res, err := tx.ExecContext(ctx,
		`UPDATE records SET status=$1, updated_at=$2 WHERE kind=$3 AND id=$4 AND status=$5`,
		t.To, t.CreatedAt, t.Kind, t.RecordID, t.From,
	)
	if err != nil {
		return nil, fmt.Errorf("update record status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := getRecord(ctx, tx, t.Kind, t.RecordID); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}

	if err := insertTransition(ctx, tx, &t); err != nil {
		return nil, err
	}
	if err := insertActivity(ctx, tx, &w.Activity); err != nil {
		return nil, err
	}
	if w.Payload != nil {
		if err := insertTask(ctx, tx, w.TaskID, w.Payload, t.CreatedAt); err != nil {
			return nil, err
		}
	}

	rec, err := getRecord(ctx, tx, t.Kind, t.RecordID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return rec, nil
}

func insertTransition(ctx context.Context, q querier, t *models.Transition) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transitions (id, record_id, kind, from_status, to_status, actor, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.RecordID, t.Kind, t.From, t.To, t.Actor, t.Note, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// History returns a record's transitions oldest first.
func (r *RecordRepository) History(ctx context.Context, recordID string) ([]*models.Transition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, record_id, kind, from_status, to_status, actor, note, created_at
		FROM transitions WHERE record_id=$1 ORDER BY created_at ASC, id ASC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Transition, 0)
	for rows.Next() {
		t := &models.Transition{}
		if err := rows.Scan(&t.ID, &t.RecordID, &t.Kind, &t.From, &t.To, &t.Actor, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
