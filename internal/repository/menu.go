package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bizflow/internal/models"
)

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) List(ctx context.Context, mode string) ([]*models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mode, label, url, position FROM menu_items WHERE mode=$1 ORDER BY position ASC, id ASC`, mode)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	res := make([]*models.MenuItem, 0)
	for rows.Next() {
		m := &models.MenuItem{}
		if err := rows.Scan(&m.ID, &m.Mode, &m.Label, &m.URL, &m.Position); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *MenuRepository) Create(ctx context.Context, m *models.MenuItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, mode, label, url, position) VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Mode, m.Label, m.URL, m.Position,
	)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, m *models.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET label=$1, url=$2, position=$3 WHERE mode=$4 AND id=$5`,
		m.Label, m.URL, m.Position, m.Mode, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, mode, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE mode=$1 AND id=$2`, mode, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
