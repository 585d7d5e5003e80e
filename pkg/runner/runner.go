package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
)

// ErrInterrupted is returned when a signal ends the loop.
var ErrInterrupted = errors.New("interrupted")

var errQuit = errors.New("quit")

// Runner handles the preview loop of a journey using the provided IO.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store     ports.StateStore
	SessionID string
	Mode      domain.PreviewMode

	initialState *domain.State
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run previews journeyID until the user quits or input ends, and returns
// the last state. A completed session keeps accepting :back.
func (r *Runner) Run(ctx context.Context, engine ports.PreviewEngine, journeyID string) (*domain.State, error) {
	state, err := r.resolveInitialState(ctx, engine, journeyID)
	if err != nil {
		return nil, err
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		view, err := BuildView(ctx, engine, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}
		if err := r.Handler.Show(ctx, view); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		line, err := r.Handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if signals.Context().Err() != nil {
				r.Logger.Debug("runner input cancelled", "err", signals.Context().Err())
				return state, ErrInterrupted
			}
			if err == io.EOF {
				return state, nil
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		next, err := r.apply(ctx, engine, view, line)
		switch {
		case errors.Is(err, errQuit):
			return state, nil
		case err != nil:
			var inputErr *InputError
			if errors.Is(err, domain.ErrSessionClosed) || errors.Is(err, domain.ErrJourneyNotFound) {
				return state, err
			}
			if !errors.As(err, &inputErr) {
				r.Logger.Debug("transition rejected", "session_id", state.SessionID, "err", err)
			}
			if err := r.Handler.SystemOutput(ctx, err.Error()); err != nil {
				return state, err
			}
			continue
		}

		if err := r.saveState(ctx, next); err != nil {
			return next, fmt.Errorf("critical persistence error: %w", err)
		}
		state = next
	}
}

// apply turns one line into a transition.
func (r *Runner) apply(ctx context.Context, engine ports.PreviewEngine, view *View, line string) (*domain.State, error) {
	state := view.State
	if cmd, ok := ParseCommand(line); ok {
		return r.command(ctx, engine, view, cmd)
	}
	if view.Complete {
		if line == "" {
			return nil, errQuit
		}
		return nil, inputErrorf("the journey is complete; type :back or :quit")
	}
	if view.Current == nil {
		return nil, errQuit
	}

	cur := *view.Current
	if cur.Kind == domain.StepPage {
		if line == "" {
			return engine.Next(ctx, state)
		}
		ref, raw, ok := splitAssignment(line)
		if !ok || cur.Template.IsCheckout() {
			return nil, inputErrorf("answer with field=value or press enter to continue")
		}
		field, ok := view.Field(ref)
		if !ok {
			return nil, inputErrorf("no field %q on this page", ref)
		}
		return r.answer(ctx, engine, state, field, raw)
	}

	if line != "" && cur.Question.Type.Interactive() {
		next, err := r.answer(ctx, engine, state, cur, line)
		if err != nil {
			return nil, err
		}
		state = next
	}
	return engine.Next(ctx, state)
}

func (r *Runner) answer(ctx context.Context, engine ports.PreviewEngine, state *domain.State, field domain.Step, raw string) (*domain.State, error) {
	value, err := ParseAnswer(field.Question, raw)
	if err != nil {
		return nil, err
	}
	return engine.Answer(ctx, state, field.Key, value)
}

func (r *Runner) command(ctx context.Context, engine ports.PreviewEngine, view *View, cmd Command) (*domain.State, error) {
	state := view.State
	switch cmd.Name {
	case "quit":
		return nil, errQuit
	case "back":
		if !view.Complete && state.StepIndex == 0 {
			return nil, inputErrorf("already at the first step")
		}
		return engine.Prev(ctx, state)
	case "next":
		return engine.Next(ctx, state)
	case "add":
		parent := view.RepeatParent()
		if len(cmd.Args) > 0 {
			parent = cmd.Args[0]
		}
		if parent == "" {
			return nil, inputErrorf("nothing to add here")
		}
		next, _, ok, err := engine.AddInstance(ctx, state, parent)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, inputErrorf("%s already has the maximum number of items", parent)
		}
		return next, nil
	case "remove":
		if len(cmd.Args) == 0 {
			return nil, inputErrorf("usage: :remove N [parent]")
		}
		parent := view.RepeatParent()
		if len(cmd.Args) > 1 {
			parent = cmd.Args[1]
		}
		ids := state.Answers.InstanceIDs(parent)
		n, ok := parseIndex(cmd.Args[0], len(ids))
		if parent == "" || !ok {
			return nil, inputErrorf("no item %s to remove", cmd.Args[0])
		}
		next, ok, err := engine.RemoveInstance(ctx, state, parent, ids[n-1])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, inputErrorf("%s already has the minimum number of items", parent)
		}
		return next, nil
	}
	return nil, inputErrorf("unknown command :%s (try %s)", cmd.Name, strings.Join([]string{":back", ":next", ":add", ":remove N", ":quit"}, ", "))
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", state.SessionID, "step_index", state.StepIndex)
	return nil
}

// resolveInitialState resumes a stored session of the same journey or opens
// a new one. A fresh session is saved immediately to reserve its ID.
func (r *Runner) resolveInitialState(ctx context.Context, engine ports.PreviewEngine, journeyID string) (*domain.State, error) {
	if r.initialState != nil {
		return r.initialState, nil
	}
	if r.Store != nil && r.SessionID != "" {
		state, err := r.Store.Load(ctx, r.SessionID)
		switch {
		case err == nil && state.JourneyID == journeyID && state.Status != domain.StatusClosed:
			r.Logger.Debug("session resumed", "session_id", r.SessionID)
			return state, nil
		case err != nil && !errors.Is(err, domain.ErrSessionNotFound):
			return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
	}

	state, err := engine.Open(ctx, journeyID, r.SessionID, r.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	if err := r.saveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to initialize session %s: %w", state.SessionID, err)
	}
	return state, nil
}
