package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizflow/internal/db"
	"bizflow/internal/models"
	"bizflow/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.NewDB(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newRecord(id string, kind models.Kind, status models.Status) *models.Record {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Record{ID: id, Kind: kind, Status: status, Title: "rec " + id, CreatedAt: now, UpdatedAt: now}
}

func TestRecordCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRecordRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, newRecord("r-1", models.KindOrder, "pending")))

	got, err := repo.GetByID(ctx, models.KindOrder, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.Status("pending"), got.Status)
	assert.Equal(t, "rec r-1", got.Title)

	_, err = repo.GetByID(ctx, models.KindInvoice, "r-1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, models.KindOrder, "r-1"))
	_, err = repo.GetByID(ctx, models.KindOrder, "r-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, models.KindOrder, "r-1"), models.ErrNotFound)
}

func TestRecordListFiltersAndCursor(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRecordRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, newRecord("a", models.KindOrder, "pending")))
	require.NoError(t, repo.Create(ctx, newRecord("b", models.KindOrder, "shipped")))
	require.NoError(t, repo.Create(ctx, newRecord("c", models.KindOrder, "pending")))
	require.NoError(t, repo.Create(ctx, newRecord("d", models.KindInvoice, "draft")))

	orders, err := repo.List(ctx, repository.ListFilter{Kind: models.KindOrder})
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	pending, err := repo.List(ctx, repository.ListFilter{Kind: models.KindOrder, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)

	page, err := repo.List(ctx, repository.ListFilter{Kind: models.KindOrder, Cursor: "a", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)
}

func TestApplyTransition(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := repository.NewRecordRepository(conn)
	tasks := repository.NewSQLTaskRepository(conn)
	activities := repository.NewActivityRepository(conn)

	require.NoError(t, repo.Create(ctx, newRecord("o-1", models.KindOrder, "pending")))

	now := time.Now().UTC()
	w := repository.TransitionWrite{
		Transition: models.Transition{ID: "t-1", RecordID: "o-1", Kind: models.KindOrder, From: "pending", To: "confirmed", Actor: "ann", CreatedAt: now},
		Activity:   models.Activity{ID: "a-1", EntityType: "order", EntityID: "o-1", Action: "status_changed", Description: "Pending → Confirmed", CreatedAt: now},
		Payload:    []byte(`{"to":"confirmed"}`),
		TaskID:     "task-1",
	}
	rec, err := repo.ApplyTransition(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, models.Status("confirmed"), rec.Status)

	history, err := repo.History(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.Status("pending"), history[0].From)
	assert.Equal(t, "ann", history[0].Actor)

	acts, err := activities.ListByEntity(ctx, "order", "o-1", 0)
	require.NoError(t, err)
	require.Len(t, acts, 1)

	pending, err := tasks.GetPendingTasks(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.JSONEq(t, `{"to":"confirmed"}`, string(pending[0].Payload))

	// replaying the same request finds the record no longer pending
	w.Transition.ID, w.Activity.ID, w.TaskID = "t-2", "a-2", "task-2"
	_, err = repo.ApplyTransition(ctx, w)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)

	w.Transition.RecordID = "missing"
	_, err = repo.ApplyTransition(ctx, w)
	assert.ErrorIs(t, err, models.ErrNotFound)

	history, err = repo.History(ctx, "o-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestActivitiesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewActivityRepository(newTestDB(t))
	base := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &models.Activity{ID: "1", EntityType: "order", EntityID: "o", Action: "note", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Activity{ID: "2", EntityType: "order", EntityID: "o", Action: "note", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.Activity{ID: "3", EntityType: "order", EntityID: "other", Action: "note", CreatedAt: base}))

	acts, err := repo.ListByEntity(ctx, "order", "o", 10)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "2", acts[0].ID)
}

func TestMenuRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMenuRepository(newTestDB(t))

	item := &models.MenuItem{ID: "m-1", Mode: "header", Label: "Home", URL: "/"}
	require.NoError(t, repo.Create(ctx, item))

	items, err := repo.List(ctx, "header")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Label)
	assert.Equal(t, "/", items[0].URL)

	item.Label = "Start"
	require.NoError(t, repo.Update(ctx, item))
	items, _ = repo.List(ctx, "header")
	assert.Equal(t, "Start", items[0].Label)

	empty, err := repo.List(ctx, "footer")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Delete(ctx, "header", "m-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "header", "m-1"), models.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, item), models.ErrNotFound)
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSQLTaskRepository(newTestDB(t))

	require.NoError(t, repo.CreateTask(ctx, "t-1", []byte("one")))
	require.NoError(t, repo.CreateTask(ctx, "t-2", []byte("two")))

	tasks, err := repo.GetPendingTasks(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.NoError(t, repo.MarkTaskProcessing(ctx, "t-1"))
	require.NoError(t, repo.UpdateTaskFailure(ctx, "t-2", 3, repository.TaskStatusNoAttemptsLeft, time.Now()))

	tasks, err = repo.GetPendingTasks(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, repo.UpdateTaskFailure(ctx, "t-1", 1, repository.TaskStatusFailed, time.Now().Add(-time.Second)))
	tasks, err = repo.GetPendingTasks(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].AttemptCount)

	require.NoError(t, repo.DeleteTask(ctx, "t-1"))
	tasks, _ = repo.GetPendingTasks(ctx, 10, 3)
	assert.Empty(t, tasks)
}
