package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"bizflow/internal/audit"
	"bizflow/internal/middleware"
	"bizflow/internal/models"
	"bizflow/internal/progress"
	"bizflow/internal/repository"
	"bizflow/internal/service"
	"bizflow/internal/transitions"
	"bizflow/internal/vocabulary"
)

type Server struct {
	records   *service.RecordService
	menu      *service.MenuService
	live      http.Handler
	creds     middleware.Credentials
	auditPool *audit.AuditWorkerPool
	logger    *zap.Logger
	addr      string
	http      *http.Server
}

type Deps struct {
	Records   *service.RecordService
	Menu      *service.MenuService
	Live      http.Handler
	AuditPool *audit.AuditWorkerPool
	Logger    *zap.Logger
}

func NewServer(deps Deps, creds middleware.Credentials, addr string) *Server {
	s := &Server{
		records:   deps.Records,
		menu:      deps.Menu,
		live:      deps.Live,
		creds:     creds,
		auditPool: deps.AuditPool,
		logger:    deps.Logger,
		addr:      addr,
	}
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

var mutating = []string{http.MethodPost, http.MethodPut, http.MethodDelete}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handleWith(mux, "GET /vocabulary", s.handleKinds)
	s.handleWith(mux, "GET /vocabulary/{kind}", s.handleVocabulary)
	s.handleWith(mux, "GET /vocabulary/{kind}/{status}/actions", s.handleActions)

	s.handleWith(mux, "GET /records/{kind}", s.handleListRecords)
	s.handleWith(mux, "POST /records/{kind}", s.handleCreateRecord)
	s.handleWith(mux, "GET /records/{kind}/{id}", s.handleGetRecord)
	s.handleWith(mux, "DELETE /records/{kind}/{id}", s.handleDeleteRecord)
	s.handleWith(mux, "GET /records/{kind}/{id}/transitions", s.handleHistory)
	s.handleWith(mux, "POST /records/{kind}/{id}/transitions", s.handleTransition)

	s.handleWith(mux, "GET /activities/{entityType}/{entityID}", s.handleListActivities)
	s.handleWith(mux, "POST /activities", s.handleCreateActivity)

	s.handleWith(mux, "GET /cms/menu/{mode}", s.handleListMenu)
	s.handleWith(mux, "POST /cms/menu/{mode}", s.handleCreateMenu)
	s.handleWith(mux, "PUT /cms/menu/{mode}/{id}", s.handleUpdateMenu)
	s.handleWith(mux, "DELETE /cms/menu/{mode}/{id}", s.handleDeleteMenu)

	if s.live != nil {
		mux.Handle("GET /ws/activities", s.live)
	}
}

func (s *Server) handleWith(mux *http.ServeMux, pattern string, handlerFunc http.HandlerFunc) {
	finalHandler := middleware.LogMiddleware(s.logger, s.auditPool, mutating...)(
		middleware.BasicAuthMiddleware(s.creds, mutating...)(
			handlerFunc,
		),
	)
	mux.Handle(pattern, finalHandler)
}

// Handler is the routed API, for embedding in tests or another server.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type vocabularyEntry struct {
	models.Descriptor
	Terminal bool            `json:"terminal"`
	Actions  []models.Action `json:"actions"`
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vocabulary.Kinds())
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.PathValue("kind"))
	if !vocabulary.IsKind(kind) {
		s.writeError(w, models.ErrUnknownKind(kind))
		return
	}
	descs := vocabulary.DescribeAll(kind)
	res := make([]vocabularyEntry, 0, len(descs))
	for _, d := range descs {
		res = append(res, vocabularyEntry{
			Descriptor: d,
			Terminal:   vocabulary.IsTerminal(kind, d.Status),
			Actions:    transitions.NextActions(kind, d.Status),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

type actionsResponse struct {
	Descriptor models.Descriptor `json:"descriptor"`
	Actions    []models.Action   `json:"actions"`
	Progress   *progress.Result  `json:"progress,omitempty"`
}

// handleActions answers for any status string; unknown ones get the default
// descriptor and no actions.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.PathValue("kind"))
	status := models.Status(r.PathValue("status"))
	res := actionsResponse{
		Descriptor: vocabulary.Describe(kind, status),
		Actions:    transitions.NextActions(kind, status),
	}
	if kind == models.KindOrder {
		p := progress.Order(status)
		res.Progress = &p
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.ParseInt(q.Get("limit"), 10, 64)
	if err != nil {
		limit = 10
	}
	records, err := s.records.ListRecords(r.Context(), repository.ListFilter{
		Kind:   models.Kind(r.PathValue("kind")),
		Status: models.Status(q.Get("status")),
		Cursor: q.Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type createRecordRequest struct {
	Title  string        `json:"title"`
	Status models.Status `json:"status"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, models.ErrInvalidInput("bad JSON"))
		return
	}
	rec, err := s.records.CreateRecord(r.Context(), models.Kind(r.PathValue("kind")), req.Title, req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), models.Kind(r.PathValue("kind")), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteRecord(r.Context(), models.Kind(r.PathValue("kind")), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.records.History(r.Context(), models.Kind(r.PathValue("kind")), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type transitionResponse struct {
	Record     *models.Record     `json:"record"`
	Transition *models.Transition `json:"transition"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, models.ErrInvalidInput("bad JSON"))
		return
	}
	if req.Actor == "" {
		req.Actor, _, _ = r.BasicAuth()
	}
	rec, t, err := s.records.Transition(r.Context(), models.Kind(r.PathValue("kind")), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Record: rec, Transition: t})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil {
		limit = 50
	}
	acts, err := s.records.ListActivities(r.Context(), r.PathValue("entityType"), r.PathValue("entityID"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var a models.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.writeError(w, models.ErrInvalidInput("bad JSON"))
		return
	}
	if err := s.records.CreateActivity(r.Context(), &a); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.menu.List(r.Context(), r.PathValue("mode"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var m models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, models.ErrInvalidInput("bad JSON"))
		return
	}
	if err := s.menu.Create(r.Context(), r.PathValue("mode"), &m); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	var m models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, models.ErrInvalidInput("bad JSON"))
		return
	}
	if err := s.menu.Update(r.Context(), r.PathValue("mode"), r.PathValue("id"), &m); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	if err := s.menu.Delete(r.Context(), r.PathValue("mode"), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	env := envelope{Success: false}
	code := http.StatusInternalServerError

	var domainErr *models.DomainError
	switch {
	case errors.As(err, &domainErr):
		code = domainErr.Status()
		env.Error = domainErr.Code
		env.Message = domainErr.Message
		if len(domainErr.Details) > 0 {
			env.Details = domainErr.Details
		}
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
		env.Error = "not_found"
		env.Message = "not found"
	default:
		s.logger.Error("internal error", zap.Error(err))
		env.Error = "internal_error"
		env.Message = "an unexpected error occurred"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}
