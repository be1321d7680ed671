// Package http exposes the session driver over a JSON HTTP API with a
// server-sent event stream per session.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/runner"
	"github.com/aretw0/intake/pkg/session"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the session driver boundary.
type Server struct {
	Driver      ports.SessionDriver
	Streams     *StreamManager
	Transcripts ports.TranscriptReader
	Catalog     *catalog.Catalog
	Metrics     http.Handler
	Logger      *slog.Logger
	MaxInput    int
}

// Option configures a Server.
type Option func(*Server)

// WithTranscripts enables the transcript endpoint.
func WithTranscripts(r ports.TranscriptReader) Option {
	return func(s *Server) {
		s.Transcripts = r
	}
}

// WithCatalog enables the catalog endpoint.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) {
		s.Catalog = c
	}
}

// WithMetricsHandler mounts h under /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMaxInput overrides the answer size limit.
func WithMaxInput(n int) Option {
	return func(s *Server) {
		s.MaxInput = n
	}
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// SessionResponse describes one session.
type SessionResponse struct {
	SessionID string           `json:"session_id"`
	Status    domain.Status    `json:"status,omitempty"`
	Prompt    *string          `json:"prompt"`
	Data      *domain.Document `json:"data,omitempty"`
}

// AnswerRequest is the body of POST /sessions/{id}/answers.
type AnswerRequest struct {
	Input string `json:"input"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler for driver.
func NewHandler(driver ports.SessionDriver, opts ...Option) http.Handler {
	return NewServer(driver, opts...).Routes()
}

// NewServer creates a Server without building its router.
func NewServer(driver ports.SessionDriver, opts ...Option) *Server {
	s := &Server{
		Driver:  driver,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.Logger
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger(s.Logger))
	r.Use(enableCORS)
	if spec, err := loadSpec(); err != nil {
		s.Logger.Error("request validation disabled", "err", err)
	} else {
		r.Use(s.validateRequests(spec))
	}

	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/swagger", s.GetSwagger)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Catalog != nil {
		r.Get("/catalog", s.GetCatalog)
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/prompt", s.GetPrompt)
			r.Post("/answers", s.SubmitAnswer)
			r.Get("/data", s.GetData)
			r.Get("/transcript", s.GetTranscript)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := OpenAPI(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "intake-http",
		"version":     strings.TrimSpace(intake.Version),
		"api_version": apiVersion,
	})
}

// GetCatalog handles GET /catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Catalog.ToFile())
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if r.ContentLength != 0 {
		if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ctx := r.Context()
	var (
		id     = body.SessionID
		prompt string
		err    error
	)
	if id == "" {
		id, err = s.Driver.CreateSession(ctx)
		if err == nil {
			prompt, _, err = s.Driver.CurrentPrompt(ctx, id)
		}
	} else {
		starter, ok := s.Driver.(runner.SessionStarter)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "chosen session ids are not supported")
			return
		}
		prompt, err = starter.StartSession(ctx, id)
	}
	if err != nil {
		s.fail(w, "create session", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID: id,
		Status:    domain.StatusActive,
		Prompt:    &prompt,
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Driver.ListSessions(r.Context())
	if err != nil {
		s.fail(w, "list sessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.describe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetPrompt handles GET /sessions/{id}/prompt.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prompt, ok, err := s.Driver.CurrentPrompt(r.Context(), id)
	if err != nil {
		s.fail(w, "get prompt", err)
		return
	}
	resp := SessionResponse{SessionID: id}
	if ok {
		resp.Prompt = &prompt
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubmitAnswer handles POST /sessions/{id}/answers.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body AnswerRequest
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := runner.SanitizeAnswer(body.Input, s.MaxInput)
	if err != nil {
		s.Logger.Warn("answer rejected", "session_id", id, "err", err, "size", len(body.Input))
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}

	ctx := r.Context()
	watched := s.Streams.HasSubscribers(id)
	var before *domain.State
	if watched {
		before, _ = s.Driver.State(ctx, id)
	}

	env, err := s.Driver.SubmitAnswer(ctx, id, input)
	if err != nil {
		s.fail(w, "submit answer", err)
		return
	}

	if watched {
		s.publish(ctx, id, before)
	}
	s.writeJSON(w, http.StatusOK, env)
}

// GetData handles GET /sessions/{id}/data.
func (s *Server) GetData(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Driver.ExportCompiledData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "export data", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Driver.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTranscript handles GET /sessions/{id}/transcript.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	if s.Transcripts == nil {
		s.writeError(w, http.StatusNotFound, "transcripts are not enabled")
		return
	}
	msgs, err := s.Transcripts.Transcript(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get transcript", err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]domain.Message{"messages": msgs})
}

func (s *Server) describe(ctx context.Context, id string) (SessionResponse, error) {
	status, err := s.Driver.Status(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	resp := SessionResponse{SessionID: id, Status: status}

	prompt, ok, err := s.Driver.CurrentPrompt(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	if ok {
		resp.Prompt = &prompt
	}

	doc, err := s.Driver.ExportCompiledData(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	resp.Data = &doc
	return resp, nil
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionExists):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.Logger.Error(op+" failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
