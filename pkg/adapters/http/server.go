package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/journeys"
	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/internal/presentation/graph"
	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/internal/validator"
	"github.com/aretw0/journeys/pkg/adapters/memory"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
	jrunner "github.com/aretw0/journeys/pkg/runner"
	"github.com/aretw0/journeys/pkg/schema"
	"github.com/aretw0/journeys/pkg/session"
)

// Engine is the preview surface the server drives.
type Engine interface {
	ports.PreviewEngine
	Lint(ctx context.Context, journeyID string) ([]validator.Issue, error)
}

// Server serves the preview API.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager
	Spec     *Spec

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager. Defaults to in-memory sessions.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics mounts a metrics handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

var (
	errSessionExists = errors.New("session already exists")
	errLimitReached  = errors.New("repeat limit reached")
)

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s, err := NewServer(engine, opts...)
	if err != nil {
		return nil, err
	}
	return enableCORS(s.Router()), nil
}

// NewServer loads the API description and applies opts.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Spec:    spec,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Sessions == nil {
		s.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.Streams.logger = s.logger
	return s, nil
}

// Router returns the routes of the API without CORS handling.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/openapi.yaml", s.Spec.serveYAML)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/events", s.subscribeEvents)

	r.Route("/journeys", func(r chi.Router) {
		r.Get("/", s.listJourneys)
		r.Get("/{journeyId}", s.getJourney)
		r.Get("/{journeyId}/lint", s.lintJourney)
		r.Get("/{journeyId}/schema", s.answerSchema)
		r.Get("/{journeyId}/graph", s.getGraph)
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.openSession)
		r.Get("/{sessionId}", s.getSession)
		r.Delete("/{sessionId}", s.closeSession)
		r.Get("/{sessionId}/steps", s.getSteps)
		r.Post("/{sessionId}/answers", s.answer)
		r.Post("/{sessionId}/next", s.next)
		r.Post("/{sessionId}/prev", s.prev)
		r.Post("/{sessionId}/instances", s.addInstance)
		r.Delete("/{sessionId}/instances/{parentId}/{instanceId}", s.removeInstance)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Journeys API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "journeys-http",
		"version":     strings.TrimSpace(journeys.Version),
		"api_version": s.Spec.Version(),
	})
}

func (s *Server) listJourneys(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Journeys(r.Context())
	if err != nil {
		s.writeError(w, "listJourneys", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"journeys": ids})
}

func (s *Server) getJourney(w http.ResponseWriter, r *http.Request) {
	j, err := s.Engine.Journey(r.Context(), chi.URLParam(r, "journeyId"))
	if err != nil {
		s.writeError(w, "getJourney", err)
		return
	}
	s.writeJSON(w, http.StatusOK, j)
}

func (s *Server) lintJourney(w http.ResponseWriter, r *http.Request) {
	issues, err := s.Engine.Lint(r.Context(), chi.URLParam(r, "journeyId"))
	if err != nil {
		s.writeError(w, "lintJourney", err)
		return
	}
	if issues == nil {
		issues = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

func (s *Server) answerSchema(w http.ResponseWriter, r *http.Request) {
	j, err := s.Engine.Journey(r.Context(), chi.URLParam(r, "journeyId"))
	if err != nil {
		s.writeError(w, "getAnswerSchema", err)
		return
	}
	s.writeJSON(w, http.StatusOK, schema.ForJourney(j))
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	j, err := s.Engine.Journey(ctx, chi.URLParam(r, "journeyId"))
	if err != nil {
		s.writeError(w, "getGraph", err)
		return
	}

	var overlay *graph.Overlay
	if sid := r.URL.Query().Get("session_id"); sid != "" {
		state, err := s.Sessions.Load(ctx, sid)
		if err != nil {
			s.writeError(w, "getGraph", err)
			return
		}
		view, err := jrunner.BuildView(ctx, s.Engine, state)
		if err != nil {
			s.writeError(w, "getGraph", err)
			return
		}
		if view.Current != nil {
			overlay = graph.SessionOverlay(state, *view.Current)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(j, overlay)))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "listSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

type openRequest struct {
	JourneyID string             `json:"journeyId"`
	SessionID string             `json:"sessionId"`
	Mode      domain.PreviewMode `json:"mode"`
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var body openRequest
	if err := s.decodeBody(r, "openSession", &body); err != nil {
		s.writeError(w, "openSession", err)
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	ctx := r.Context()
	created := false
	state, err := s.Sessions.LoadOrCreate(ctx, body.SessionID, func() (*domain.State, error) {
		created = true
		return s.Engine.Open(ctx, body.JourneyID, body.SessionID, body.Mode)
	})
	if err == nil && !created {
		err = fmt.Errorf("%w: %s", errSessionExists, body.SessionID)
	}
	if err != nil {
		s.writeError(w, "openSession", err)
		return
	}
	s.writeView(w, r, http.StatusCreated, state, nil)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		s.writeError(w, "getSession", err)
		return
	}
	s.writeView(w, r, http.StatusOK, state, nil)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionId")
	if _, ok := s.mutate(w, r, "closeSession", func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.Close(ctx, state), nil
	}); !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), sid); err != nil {
		s.writeError(w, "closeSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSteps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := s.Sessions.Load(ctx, chi.URLParam(r, "sessionId"))
	if err != nil {
		s.writeError(w, "getSteps", err)
		return
	}
	steps, err := s.Engine.Steps(ctx, state)
	if err != nil {
		s.writeError(w, "getSteps", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]domain.Step{"steps": steps})
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := s.decodeBody(r, "answer", &body); err != nil {
		s.writeError(w, "answer", err)
		return
	}
	key, err := domain.ParseAnswerKey(body.Key)
	if err != nil {
		s.writeError(w, "answer", &badRequestError{err.Error()})
		return
	}
	if state, ok := s.mutate(w, r, "answer", func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.Answer(ctx, state, key, body.Value)
	}); ok {
		s.writeView(w, r, http.StatusOK, state, nil)
	}
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	if state, ok := s.mutate(w, r, "next", s.Engine.Next); ok {
		s.writeView(w, r, http.StatusOK, state, nil)
	}
}

func (s *Server) prev(w http.ResponseWriter, r *http.Request) {
	if state, ok := s.mutate(w, r, "prev", s.Engine.Prev); ok {
		s.writeView(w, r, http.StatusOK, state, nil)
	}
}

func (s *Server) addInstance(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentID string `json:"parentId"`
	}
	if err := s.decodeBody(r, "addInstance", &body); err != nil {
		s.writeError(w, "addInstance", err)
		return
	}
	var id string
	if state, ok := s.mutate(w, r, "addInstance", func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, instID, added, err := s.Engine.AddInstance(ctx, state, body.ParentID)
		if err != nil {
			return nil, err
		}
		if !added {
			return nil, fmt.Errorf("%w: %s is at its maximum", errLimitReached, body.ParentID)
		}
		id = instID
		return next, nil
	}); ok {
		s.writeView(w, r, http.StatusOK, state, map[string]any{"instanceId": id})
	}
}

func (s *Server) removeInstance(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentId")
	instanceID := chi.URLParam(r, "instanceId")
	if state, ok := s.mutate(w, r, "removeInstance", func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, removed, err := s.Engine.RemoveInstance(ctx, state, parentID, instanceID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, fmt.Errorf("%w: cannot remove %s from %s", errLimitReached, instanceID, parentID)
		}
		return next, nil
	}); ok {
		s.writeView(w, r, http.StatusOK, state, nil)
	}
}

// mutate applies fn to the session under its lock, persists the result and
// broadcasts the diff to subscribers. On failure the error response is
// already written.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *domain.State) (*domain.State, error)) (*domain.State, bool) {
	sid := chi.URLParam(r, "sessionId")
	var before *domain.State
	next, err := s.Sessions.Update(r.Context(), sid, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		before = state
		return fn(ctx, state)
	})
	if err != nil {
		s.writeError(w, op, err)
		return nil, false
	}

	if diff := domain.Diff(before, next); diff != nil {
		s.logger.Debug("state diff", "op", op, "session_id", sid)
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(sid, string(payload))
		}
	}
	return next, true
}

func (s *Server) decodeBody(r *http.Request, operationID string, dst any) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return &badRequestError{"invalid request body"}
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return &badRequestError{"invalid request body"}
	}
	if err := s.Spec.ValidateBody(operationID, generic); err != nil {
		return &badRequestError{err.Error()}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &badRequestError{"invalid request body"}
	}
	return nil
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, state *domain.State, extra map[string]any) {
	view, err := jrunner.BuildView(r.Context(), s.Engine, state)
	if err != nil {
		s.writeError(w, "view", err)
		return
	}
	if len(extra) == 0 {
		s.writeJSON(w, status, view)
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		s.writeError(w, "view", err)
		return
	}
	merged := make(map[string]any)
	if err := json.Unmarshal(payload, &merged); err != nil {
		s.writeError(w, "view", err)
		return
	}
	for k, v := range extra {
		merged[k] = v
	}
	s.writeJSON(w, status, merged)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "err", err)
	} else {
		s.logger.Debug("request rejected", "op", op, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		typeErr *runtime.AnswerTypeError
		badReq  *badRequestError
	)
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrJourneyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, errSessionExists), errors.Is(err, errLimitReached):
		return http.StatusConflict
	case errors.As(err, &typeErr), errors.Is(err, domain.ErrUnknownStep):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
