package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"bizflow/internal/service"
)

const (
	testUser = "testuser"
	testPass = "testpass"
)

type nopAuditor struct{}

func (nopAuditor) Log(audit.AuditLog) {}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func createTestMux(t *testing.T) *http.ServeMux {
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
	s := NewServer(Deps{
		Records: records,
		Menu:    service.NewMenuService(repository.NewMenuRepository(conn)),
		Logger:  zap.NewNop(),
	}, middleware.Credentials{User: testUser, Password: testPass}, ":0")

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path string, body interface{}) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.SetBasicAuth(testUser, testPass)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var res response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec.Code, res
}

func createRecord(t *testing.T, mux http.Handler, kind string) models.Record {
	t.Helper()
	code, res := do(t, mux, http.MethodPost, "/records/"+kind, map[string]string{"title": "first"})
	require.Equal(t, http.StatusCreated, code)
	var rec models.Record
	require.NoError(t, json.Unmarshal(res.Data, &rec))
	return rec
}

func TestHealth(t *testing.T) {
	mux := createTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, rec.Body.String())
}

func TestHandleActions(t *testing.T) {
	mux := createTestMux(t)

	t.Run("order with progress", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/vocabulary/order/shipped/actions", nil)
		require.Equal(t, http.StatusOK, code)
		var got actionsResponse
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.Equal(t, "Shipped", got.Descriptor.Label)
		require.NotNil(t, got.Progress)
		assert.InDelta(t, 75.0, got.Progress.Percent, 0.001)
		require.NotEmpty(t, got.Actions)
	})

	t.Run("unknown status", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/vocabulary/invoice/bogus/actions", nil)
		require.Equal(t, http.StatusOK, code)
		var got actionsResponse
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.False(t, got.Descriptor.Known)
		assert.Equal(t, "Pending", got.Descriptor.Label)
		assert.Empty(t, got.Actions)
		assert.Nil(t, got.Progress)
	})

	t.Run("unknown kind vocabulary", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/vocabulary/spaceship", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.False(t, res.Success)
		assert.Equal(t, models.ErrCodeUnknownKind, res.Error)
	})
}

func TestHandleRecords(t *testing.T) {
	mux := createTestMux(t)

	t.Run("create defaults to initial status", func(t *testing.T) {
		rec := createRecord(t, mux, "order")
		assert.Equal(t, models.Status("pending"), rec.Status)
	})

	t.Run("bad JSON", func(t *testing.T) {
		code, res := do(t, mux, http.MethodPost, "/records/order", "badjson")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, models.ErrCodeInvalidInput, res.Error)
	})

	t.Run("unauthorized mutation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/records/order", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		created := createRecord(t, mux, "invoice")
		code, res := do(t, mux, http.MethodGet, "/records/invoice/"+created.ID, nil)
		require.Equal(t, http.StatusOK, code)
		var got models.Record
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.Equal(t, created.ID, got.ID)

		code, res = do(t, mux, http.MethodGet, "/records/invoice?limit=5", nil)
		require.Equal(t, http.StatusOK, code)
		var list []models.Record
		require.NoError(t, json.Unmarshal(res.Data, &list))
		assert.Len(t, list, 1)
	})

	t.Run("not found", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/records/order/missing", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "not_found", res.Error)
	})

	t.Run("delete", func(t *testing.T) {
		created := createRecord(t, mux, "order")
		code, _ := do(t, mux, http.MethodDelete, "/records/order/"+created.ID, nil)
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = do(t, mux, http.MethodGet, "/records/order/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestHandleTransition(t *testing.T) {
	mux := createTestMux(t)
	created := createRecord(t, mux, "reservation")

	code, res := do(t, mux, http.MethodPost, "/records/reservation/"+created.ID+"/transitions",
		models.TransitionRequest{To: "confirmed", Note: "phoned"})
	require.Equal(t, http.StatusOK, code)
	var got transitionResponse
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, models.Status("confirmed"), got.Record.Status)
	assert.Equal(t, testUser, got.Transition.Actor)

	t.Run("unknown target", func(t *testing.T) {
		code, res := do(t, mux, http.MethodPost, "/records/reservation/"+created.ID+"/transitions",
			models.TransitionRequest{To: "teleported"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, models.ErrCodeUnknownStatus, res.Error)
	})

	t.Run("history", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/records/reservation/"+created.ID+"/transitions", nil)
		require.Equal(t, http.StatusOK, code)
		var history []models.Transition
		require.NoError(t, json.Unmarshal(res.Data, &history))
		require.Len(t, history, 1)
		assert.Equal(t, models.Status("pending"), history[0].From)
	})

	t.Run("activities", func(t *testing.T) {
		code, res := do(t, mux, http.MethodGet, "/activities/reservation/"+created.ID, nil)
		require.Equal(t, http.StatusOK, code)
		var acts []models.Activity
		require.NoError(t, json.Unmarshal(res.Data, &acts))
		require.Len(t, acts, 2)
		assert.Equal(t, "status_changed", acts[0].Action)
	})
}

func TestHandleMenu(t *testing.T) {
	mux := createTestMux(t)

	code, res := do(t, mux, http.MethodPost, "/cms/menu/header", models.MenuItem{Label: "Home", URL: "/"})
	require.Equal(t, http.StatusCreated, code)
	var created models.MenuItem
	require.NoError(t, json.Unmarshal(res.Data, &created))
	require.NotEmpty(t, created.ID)

	code, res = do(t, mux, http.MethodGet, "/cms/menu/header", nil)
	require.Equal(t, http.StatusOK, code)
	var items []models.MenuItem
	require.NoError(t, json.Unmarshal(res.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Label)
	assert.Equal(t, "/", items[0].URL)

	code, _ = do(t, mux, http.MethodPut, "/cms/menu/header/"+created.ID, models.MenuItem{Label: "Start", URL: "/"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, mux, http.MethodDelete, "/cms/menu/header/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, mux, http.MethodDelete, "/cms/menu/header/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
