package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"bizflow/internal/models"
)

type MenuStore interface {
	List(ctx context.Context, mode string) ([]*models.MenuItem, error)
	Create(ctx context.Context, m *models.MenuItem) error
	Update(ctx context.Context, m *models.MenuItem) error
	Delete(ctx context.Context, mode, id string) error
}

type MenuService struct {
	store MenuStore
}

func NewMenuService(store MenuStore) *MenuService {
	return &MenuService{store: store}
}

func validateMenuItem(m *models.MenuItem) error {
	m.Label = strings.TrimSpace(m.Label)
	m.URL = strings.TrimSpace(m.URL)
	if m.Label == "" || m.URL == "" {
		return models.ErrInvalidInput("label and url are required")
	}
	return nil
}

func (s *MenuService) List(ctx context.Context, mode string) ([]*models.MenuItem, error) {
	return s.store.List(ctx, mode)
}

func (s *MenuService) Create(ctx context.Context, mode string, m *models.MenuItem) error {
	if err := validateMenuItem(m); err != nil {
		return err
	}
	m.ID = uuid.NewString()
	m.Mode = mode
	return s.store.Create(ctx, m)
}

func (s *MenuService) Update(ctx context.Context, mode, id string, m *models.MenuItem) error {
	if err := validateMenuItem(m); err != nil {
		return err
	}
	m.ID = id
	m.Mode = mode
	return s.store.Update(ctx, m)
}

func (s *MenuService) Delete(ctx context.Context, mode, id string) error {
	return s.store.Delete(ctx, mode, id)
}
