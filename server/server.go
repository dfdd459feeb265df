// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"personal_content_agent/action"
	"personal_content_agent/generator"
	"personal_content_agent/workflow"
)

const genericFailure = "An error occurred while processing your request."

type Server struct {
	orch    *workflow.Orchestrator
	agent   *generator.Agent
	store   *sessionStore
	logger  *slog.Logger
	timeout time.Duration
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// New builds the HTTP surface. timeout bounds the model calls of the post
// review session endpoints; zero means 60s.
func New(orch *workflow.Orchestrator, agent *generator.Agent, logger *slog.Logger, timeout time.Duration) (*Server, error) {
	if orch == nil || agent == nil {
		return nil, errors.New("orchestrator and generator agent required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Server{orch: orch, agent: agent, store: newStore(), logger: logger, timeout: timeout}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/get_response", s.handleGetResponse)
	r.Post("/send_email", s.handleSendEmail)
	r.Post("/create_event", s.handleCreateEvent)
	r.Post("/post_content", s.handlePostContent)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Get("/{sessionID}", s.handleSessionGet)
		r.Post("/{sessionID}", s.handleSessionRevise)
	})
	return r
}

// --- Assistant ---

// queryReq accepts the analytics export under either name; file_path wins
// when both are set.
type queryReq struct {
	Query            string  `json:"query"`
	UploadedFilePath *string `json:"uploaded_file_path"`
	FilePath         *string `json:"file_path"`
}

func (q queryReq) file() string {
	switch {
	case q.FilePath != nil && *q.FilePath != "":
		return *q.FilePath
	case q.UploadedFilePath != nil:
		return *q.UploadedFilePath
	}
	return ""
}

type queryResp struct {
	Route  string `json:"route"`
	Output any    `json:"output"`
	Status string `json:"status,omitempty"`
}

type errorResp struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type outputResp struct {
	Output action.Result `json:"output"`
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	var req queryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Message: genericFailure})
		return
	}
	env := s.orch.Run(r.Context(), req.Query, req.file())
	writeJSON(w, http.StatusOK, queryResp{Route: string(env.Route), Output: env.Output, Status: env.Status()})
}

type sendEmailReq struct {
	Draft *generator.EmailDraft `json:"draft"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Message: genericFailure})
		return
	}
	if req.Draft == nil || *req.Draft == (generator.EmailDraft{}) {
		writeJSON(w, http.StatusOK, outputResp{Output: action.Result{Success: false, Error: "Draft missing"}})
		return
	}
	writeJSON(w, http.StatusOK, outputResp{Output: s.orch.SendDraft(r.Context(), *req.Draft)})
}

type createEventReq struct {
	Event *generator.EventDraft `json:"event"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Message: genericFailure})
		return
	}
	if req.Event == nil {
		writeJSON(w, http.StatusOK, outputResp{Output: action.Result{Success: false, Error: "Event missing"}})
		return
	}
	writeJSON(w, http.StatusOK, outputResp{Output: s.orch.CreateEvent(r.Context(), *req.Event)})
}

type postContentReq struct {
	Content string `json:"content"`
}

func (s *Server) handlePostContent(w http.ResponseWriter, r *http.Request) {
	var req postContentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Message: genericFailure})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusOK, outputResp{Output: action.Result{Success: false, Error: "Content missing"}})
		return
	}
	writeJSON(w, http.StatusOK, outputResp{Output: s.orch.PublishPost(r.Context(), req.Content)})
}

// --- Post review sessions ---

type sessionCreateReq struct {
	Topic string `json:"topic"`
}

type sessionResp struct {
	SessionID string              `json:"session_id"`
	Draft     generator.PostDraft `json:"draft"`
	History   []generator.Turn    `json:"history"`
}

type reviseReq struct {
	Comment string `json:"comment"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}
	id := uuid.NewString()
	sess := generator.NewSession(id, req.Topic, s.agent)
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if _, err := sess.Propose(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.store.set(id, sess)
	draft, history := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionResp{SessionID: id, Draft: draft, History: history})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	sess, ok := s.store.get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return sess, ok
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	draft, history := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionResp{SessionID: sess.ID, Draft: draft, History: history})
}

func (s *Server) handleSessionRevise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req reviseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		http.Error(w, "comment is required", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if _, err := sess.Revise(ctx, req.Comment); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	draft, history := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionResp{SessionID: sess.ID, Draft: draft, History: history})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
