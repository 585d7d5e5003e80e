package journeys

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/internal/validator"
	loamAdapter "github.com/aretw0/journeys/pkg/adapters/loam"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
)

// Issue is a normalization or lint finding.
type Issue = validator.Issue

// Engine is the high-level entry point of the library. It resolves
// journeys through a loader and drives preview sessions over them.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.JourneyLoader
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   domain.IDGenerator
	Name    string
}

var _ ports.PreviewEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom JourneyLoader, bypassing the default Loam
// repository.
func WithLoader(l ports.JourneyLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithIDGenerator replaces the generator of session and repeat-instance IDs.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// New creates an Engine. By default journeys are read from a Loam
// repository at path; with WithLoader, path is only a label.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		loader, err := loamAdapter.Open(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(abs)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("repository", eng.Name)
	}
	if l, ok := eng.loader.(*loamAdapter.Loader); ok {
		l.Logger = eng.logger
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithIDGenerator(eng.newID),
	)
	return eng, nil
}

// Journey returns the normalized journey with the given ID.
func (e *Engine) Journey(ctx context.Context, id string) (*domain.Journey, error) {
	return e.loader.GetJourney(ctx, id)
}

// Journeys lists the available journey IDs.
func (e *Engine) Journeys(ctx context.Context) ([]string, error) {
	return e.loader.ListJourneys(ctx)
}

// Open starts a preview session. An empty mode uses the journey's stored
// preference; an empty sessionID is generated.
func (e *Engine) Open(ctx context.Context, journeyID, sessionID string, mode domain.PreviewMode) (*domain.State, error) {
	j, err := e.Journey(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Open(ctx, j, sessionID, mode), nil
}

// Steps returns the session's current step list.
func (e *Engine) Steps(ctx context.Context, state *domain.State) ([]domain.Step, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Steps(j, state), nil
}

// Fields returns the fields shown at the cursor.
func (e *Engine) Fields(ctx context.Context, state *domain.State) ([]domain.Step, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.CurrentFields(j, state), nil
}

// Answer records an answer for a visible question.
func (e *Engine) Answer(ctx context.Context, state *domain.State, key domain.AnswerKey, value any) (*domain.State, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Answer(ctx, j, state, key, value)
}

// Next validates the current step (or page) and advances.
func (e *Engine) Next(ctx context.Context, state *domain.State) (*domain.State, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Next(ctx, j, state)
}

// Prev moves the cursor back one step.
func (e *Engine) Prev(ctx context.Context, state *domain.State) (*domain.State, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Prev(ctx, j, state)
}

// Close ends the session.
func (e *Engine) Close(ctx context.Context, state *domain.State) *domain.State {
	return e.runtime.Close(ctx, state)
}

// AddInstance appends a repeat instance under parentID.
func (e *Engine) AddInstance(ctx context.Context, state *domain.State, parentID string) (*domain.State, string, bool, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, "", false, err
	}
	return e.runtime.AddInstance(ctx, j, state, parentID)
}

// RemoveInstance deletes a repeat instance and its answers.
func (e *Engine) RemoveInstance(ctx context.Context, state *domain.State, parentID, instanceID string) (*domain.State, bool, error) {
	j, err := e.Journey(ctx, state.JourneyID)
	if err != nil {
		return nil, false, err
	}
	return e.runtime.RemoveInstance(ctx, j, state, parentID, instanceID)
}

// Lint reports the problems left in a journey after normalization.
func (e *Engine) Lint(ctx context.Context, journeyID string) ([]Issue, error) {
	j, err := e.Journey(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	return validator.Lint(j), nil
}

// Watch returns a channel of changed journey IDs.
// It fails when the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying JourneyLoader.
func (e *Engine) Loader() ports.JourneyLoader {
	return e.loader
}
