package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bizflow/internal/audit"
	"bizflow/internal/cache"
	"bizflow/internal/db"
	"bizflow/internal/middleware"
	"bizflow/internal/models"
	"bizflow/internal/repository"
	"bizflow/internal/server"
	"bizflow/internal/service"
)

type nopAuditor struct{}

func (nopAuditor) Log(audit.AuditLog) {}

func newLedger(t *testing.T) *Client {
	t.Helper()
	conn, err := db.NewDB(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	records := service.NewRecordService(
		repository.NewRecordRepository(conn),
		repository.NewActivityRepository(conn),
		cache.NewActiveRecordsCache(),
		nopAuditor{},
		zap.NewNop(),
		service.Options{},
	)
	creds := middleware.Credentials{User: "admin", Password: "secret"}
	s := server.NewServer(server.Deps{
		Records: records,
		Menu:    service.NewMenuService(repository.NewMenuRepository(conn)),
		Logger:  zap.NewNop(),
	}, creds, ":0")
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithSession(BasicAuth{User: creds.User, Password: creds.Password}))
}

func TestMenuRoundTrip(t *testing.T) {
	c := newLedger(t)
	ctx := context.Background()

	created, err := c.CreateMenuItem(ctx, "header", models.MenuItem{Label: "Home", URL: "/"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	items, err := c.ListMenu(ctx, "header")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Label)
	assert.Equal(t, "/", items[0].URL)

	other, err := c.ListMenu(ctx, "footer")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = c.UpdateMenuItem(ctx, "header", created.ID, models.MenuItem{Label: "Start", URL: "/"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteMenuItem(ctx, "header", created.ID))
	assert.True(t, IsStatus(c.DeleteMenuItem(ctx, "header", created.ID), http.StatusNotFound))
}

func TestLedgerTransitions(t *testing.T) {
	c := newLedger(t)
	ctx := context.Background()

	rec, err := c.CreateRecord(ctx, models.KindOrder, "Order #1001", "")
	require.NoError(t, err)
	assert.Equal(t, models.Status("pending"), rec.Status)

	set, err := c.Actions(ctx, models.KindOrder, rec.Status)
	require.NoError(t, err)
	require.NotEmpty(t, set.Actions)

	res, err := c.Transition(ctx, models.KindOrder, rec.ID, models.TransitionRequest{To: set.Actions[0].Target})
	require.NoError(t, err)
	assert.Equal(t, set.Actions[0].Target, res.Record.Status)

	history, err := c.History(ctx, models.KindOrder, rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = c.Transition(ctx, models.KindOrder, rec.ID, models.TransitionRequest{To: "bogus"})
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	d, err := c.LoadDashboard(ctx, models.KindOrder, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, d.Record.ID)
	assert.Len(t, d.Activities, 2)

	_, err = c.LoadDashboard(ctx, models.KindOrder, "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	vocab, err := c.Vocabulary(ctx, models.KindOrder)
	require.NoError(t, err)
	assert.NotEmpty(t, vocab)

	kinds, err := c.Kinds(ctx)
	require.NoError(t, err)
	assert.Contains(t, kinds, models.KindWorkOrder)
}
