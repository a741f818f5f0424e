package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizflow/internal/audit"
	"bizflow/internal/cache"
	"bizflow/internal/events"
	"bizflow/internal/models"
	"bizflow/internal/repository"
	"bizflow/internal/transitions"
	"bizflow/internal/vocabulary"
)

type RecordStore interface {
	Create(ctx context.Context, rec *models.Record) error
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Record, error)
	List(ctx context.Context, f repository.ListFilter) ([]*models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id string) error
	ApplyTransition(ctx context.Context, w repository.TransitionWrite) (*models.Record, error)
	History(ctx context.Context, recordID string) ([]*models.Transition, error)
}

type ActivityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit int64) ([]*models.Activity, error)
}

type Auditor interface {
	Log(record audit.AuditLog)
}

type Options struct {
	// Strict rejects transitions that are not offered as next actions.
	Strict bool
	// Notify receives committed transitions; nil disables it.
	Notify func(events.TransitionEvent)
	// Outbox writes a task row per transition for the Kafka relay. Leave it
	// off when no processor drains the tasks table.
	Outbox bool
	Now    func() time.Time
}

type RecordService struct {
	records    RecordStore
	activities ActivityStore
	active     *cache.ActiveRecordsCache
	auditor    Auditor
	logger     *zap.Logger
	opts       Options
}

func NewRecordService(records RecordStore, activities ActivityStore, active *cache.ActiveRecordsCache, auditor Auditor, logger *zap.Logger, opts Options) *RecordService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &RecordService{
		records:    records,
		activities: activities,
		active:     active,
		auditor:    auditor,
		logger:     logger,
		opts:       opts,
	}
}

func requireKind(kind models.Kind) error {
	if !vocabulary.IsKind(kind) {
		return models.ErrUnknownKind(kind)
	}
	return nil
}

// CreateRecord starts the record in status, or in the kind's initial status
// when status is empty.
func (s *RecordService) CreateRecord(ctx context.Context, kind models.Kind, title string, status models.Status) (*models.Record, error) {
	if err := requireKind(kind); err != nil {
		return nil, err
	}
	if status == "" {
		status, _ = vocabulary.Initial(kind)
	}
	if !vocabulary.IsKnown(kind, status) {
		return nil, models.ErrUnknownStatus(kind, status)
	}
	now := s.opts.Now()
	rec := &models.Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    vocabulary.Describe(kind, status).Status,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.active.Put(rec)

	act := &models.Activity{
		ID:          uuid.NewString(),
		EntityType:  string(kind),
		EntityID:    rec.ID,
		Action:      "created",
		Description: fmt.Sprintf("Created as %s", vocabulary.Describe(kind, rec.Status).Label),
		CreatedAt:   now,
	}
	if err := s.activities.Create(ctx, act); err != nil {
		s.logger.Warn("record creation activity", zap.String("record_id", rec.ID), zap.Error(err))
	}
	return rec, nil
}

func (s *RecordService) GetRecord(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	if err := requireKind(kind); err != nil {
		return nil, err
	}
	if rec, ok := s.active.Get(kind, id); ok {
		return rec, nil
	}
	rec, err := s.records.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	s.active.Put(rec)
	return rec, nil
}

func (s *RecordService) ListRecords(ctx context.Context, f repository.ListFilter) ([]*models.Record, error) {
	if err := requireKind(f.Kind); err != nil {
		return nil, err
	}
	return s.records.List(ctx, f)
}

func (s *RecordService) DeleteRecord(ctx context.Context, kind models.Kind, id string) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.active.Delete(kind, id)
	return nil
}

// Transition applies req to the record. Off-graph targets are accepted
// unless the service runs in strict mode; unknown targets never are.
func (s *RecordService) Transition(ctx context.Context, kind models.Kind, id string, req models.TransitionRequest) (*models.Record, *models.Transition, error) {
	if err := requireKind(kind); err != nil {
		return nil, nil, err
	}
	to := vocabulary.Describe(kind, req.To)
	if !to.Known {
		return nil, nil, models.ErrUnknownStatus(kind, req.To)
	}

	current, err := s.records.GetByID(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	if current.Status == to.Status {
		return nil, nil, models.ErrInvalidInput(fmt.Sprintf("%s %s is already %s", kind, id, to.Status))
	}
	if s.opts.Strict {
		if err := transitions.Validate(kind, current.Status, to.Status); err != nil {
			return nil, nil, err
		}
	}

	now := s.opts.Now()
	from := vocabulary.Describe(kind, current.Status)
	t := models.Transition{
		ID:        uuid.NewString(),
		RecordID:  id,
		Kind:      kind,
		From:      current.Status,
		To:        to.Status,
		Actor:     req.Actor,
		Note:      req.Note,
		CreatedAt: now,
	}
	evt := events.TransitionEvent{
		TransitionID: t.ID,
		RecordID:     id,
		Kind:         kind,
		From:         t.From,
		To:           t.To,
		Label:        to.Label,
		Variant:      string(to.Variant),
		Actor:        req.Actor,
		OccurredAt:   now,
	}
	w := repository.TransitionWrite{
		Transition: t,
		Activity: models.Activity{
			ID:          uuid.NewString(),
			EntityType:  string(kind),
			EntityID:    id,
			Action:      "status_changed",
			Description: fmt.Sprintf("Status changed from %s to %s", from.Label, to.Label),
			Actor:       req.Actor,
			CreatedAt:   now,
		},
	}
	if s.opts.Outbox {
		payload, err := events.Encode(evt, events.FormatJSON)
		if err != nil {
			return nil, nil, err
		}
		w.Payload, w.TaskID = payload, uuid.NewString()
	}

	rec, err := s.records.ApplyTransition(ctx, w)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, nil, models.ErrConcurrentChange(kind, id, current.Status)
	}
	if err != nil {
		return nil, nil, err
	}

	s.active.Put(rec)
	s.auditor.Log(audit.AuditLog{
		Timestamp: now,
		RecordID:  id,
		Kind:      string(kind),
		OldState:  string(t.From),
		NewState:  string(t.To),
		Message:   fmt.Sprintf("%s %s -> %s", kind, from.Label, to.Label),
	})
	if s.opts.Notify != nil {
		s.opts.Notify(evt)
	}
	s.logger.Info("status transition",
		zap.String("kind", string(kind)), zap.String("record_id", id),
		zap.String("from", string(t.From)), zap.String("to", string(t.To)))
	return rec, &t, nil
}

func (s *RecordService) History(ctx context.Context, kind models.Kind, id string) ([]*models.Transition, error) {
	if _, err := s.GetRecord(ctx, kind, id); err != nil {
		return nil, err
	}
	return s.records.History(ctx, id)
}

func (s *RecordService) ListActivities(ctx context.Context, entityType, entityID string, limit int64) ([]*models.Activity, error) {
	return s.activities.ListByEntity(ctx, entityType, entityID, limit)
}

func (s *RecordService) CreateActivity(ctx context.Context, a *models.Activity) error {
	if a.EntityType == "" || a.EntityID == "" || a.Action == "" {
		return models.ErrInvalidInput("entity_type, entity_id and action are required")
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.opts.Now()
	return s.activities.Create(ctx, a)
}

// LoadActive pages through every record; it feeds the active-records cache,
// which drops the terminal ones.
func (s *RecordService) LoadActive(ctx context.Context) ([]*models.Record, error) {
	var all []*models.Record
	cursor := ""
	for {
		page, err := s.records.List(ctx, repository.ListFilter{Cursor: cursor, Limit: 500})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < 500 {
			return all, nil
		}
		cursor = page[len(page)-1].ID
	}
}
