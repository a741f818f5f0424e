package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bizflow/internal/models"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	return insertActivity(ctx, r.db, a)
}

func insertActivity(ctx context.Context, q querier, a *models.Activity) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO activities (id, entity_type, entity_id, action, description, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.EntityType, a.EntityID, a.Action, a.Description, a.Actor, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByEntity returns the newest activities first.
func (r *ActivityRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int64) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, description, actor, created_at
		FROM activities WHERE entity_type=$1 AND entity_id=$2
		ORDER BY created_at DESC, id DESC LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Activity, 0)
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Action, &a.Description, &a.Actor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
