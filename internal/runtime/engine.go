package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/schema"
)

// Engine drives preview sessions. Every transition takes the journey and
// the current state and returns a new state; the input state is never
// modified. The engine holds no session data and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	newID  domain.IDGenerator
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithIDGenerator replaces the session and repeat-instance id generator.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		newID:  NewInstanceID,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts a session over j. The mode falls back to the journey's stored
// preference and then to question mode. An empty sessionID gets a fresh id.
func (e *Engine) Open(ctx context.Context, j *domain.Journey, sessionID string, mode domain.PreviewMode) *domain.State {
	if !mode.Valid() {
		mode = j.Meta.PreviewMode
	}
	if !mode.Valid() {
		mode = domain.ModeQuestion
	}
	if sessionID == "" {
		sessionID = e.newID()
	}

	state := domain.NewState(sessionID, j.ID, mode)
	steps := e.rebuild(j, state)

	e.logger.Debug("session opened", "session_id", sessionID, "journey", j.ID, "mode", mode, "steps", len(steps))
	if e.hooks.OnSessionOpen != nil {
		e.hooks.OnSessionOpen(ctx, &domain.SessionEvent{
			EventBase: e.base(domain.EventSessionOpen, state),
			Mode:      mode,
			Steps:     len(steps),
		})
	}
	return state
}

// Steps returns the current step list without modifying state.
func (e *Engine) Steps(j *domain.Journey, state *domain.State) []domain.Step {
	answers := state.Answers.Clone()
	return Steps(j, &answers, state.Mode, e.newID)
}

// CurrentStep returns the step under the cursor. It reports false when the
// step list is empty.
func (e *Engine) CurrentStep(j *domain.Journey, state *domain.State) (domain.Step, bool) {
	steps := e.Steps(j, state)
	if len(steps) == 0 {
		return domain.Step{}, false
	}
	return steps[clampIndex(state.StepIndex, len(steps))], true
}

// CurrentFields returns the visible fields of the current page in page
// mode, or the current question step in question mode.
func (e *Engine) CurrentFields(j *domain.Journey, state *domain.State) []domain.Step {
	cur, ok := e.CurrentStep(j, state)
	if !ok {
		return nil
	}
	if cur.Kind == domain.StepQuestion {
		return []domain.Step{cur}
	}
	answers := state.Answers.Clone()
	return PageFields(j, &answers, cur.PageID, e.newID)
}

// Answer records value under key. The key must belong to a currently
// visible question. Changing the answer of a repeatable follow-up trigger
// discards every instance and starts over from min.
func (e *Engine) Answer(ctx context.Context, j *domain.Journey, state *domain.State, key domain.AnswerKey, value any) (*domain.State, error) {
	if state.Status == domain.StatusClosed {
		return nil, domain.ErrSessionClosed
	}

	next := state.Clone()
	answerable := QuestionSteps(j, &next.Answers, e.newID)
	i := domain.FindStepByKey(answerable, key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStep, key)
	}
	step := answerable[i]

	value = domain.NormalizeValue(value)
	if value != nil {
		if err := schema.ForQuestion(step.Question).Validate(value); err != nil {
			return nil, &AnswerTypeError{Key: key, Type: step.Question.Type, Err: err}
		}
	}

	previous := next.Answers.Value(key)
	next.Answers.Set(key, value)

	delete(next.PageErrors, key)
	if next.LastErrorStep == key {
		next.LastError = ""
		next.LastErrorStep = domain.AnswerKey{}
	}

	if step.Question.HasRepeatableFollowUp() && !key.IsInstance() && !reflect.DeepEqual(previous, value) {
		ClearAllInstances(step.Question, &next.Answers)
		EnsureMinInstances(step.Question, &next.Answers, e.newID)
	}

	steps := e.rebuild(j, next)

	e.logger.Debug("answer recorded", "session_id", next.SessionID, "step", key.String())
	if e.hooks.OnAnswer != nil {
		e.hooks.OnAnswer(ctx, e.stepEvent(domain.EventAnswer, next, steps, key.String()))
	}
	return next, nil
}

// Next validates the current step (question mode) or every visible field of
// the current page (page mode). On failure the errors are recorded and the
// cursor stays put; otherwise the cursor advances, or the session completes
// when it is already on the last step.
func (e *Engine) Next(ctx context.Context, j *domain.Journey, state *domain.State) (*domain.State, error) {
	if state.Status == domain.StatusClosed {
		return nil, domain.ErrSessionClosed
	}
	next := state.Clone()
	if next.Status == domain.StatusComplete {
		return next, nil
	}

	steps := e.rebuild(j, next)
	if len(steps) == 0 {
		return e.complete(ctx, next, 0), nil
	}
	cur := steps[next.StepIndex]

	if next.Mode == domain.ModePage {
		fields := PageFields(j, &next.Answers, cur.PageID, e.newID)
		if errs := ValidateFields(fields, next.Answers); len(errs) > 0 {
			next.LastError = ""
			next.LastErrorStep = domain.AnswerKey{}
			next.PageErrors = errs
			e.validationFailed(ctx, next, cur.ID, errs)
			return next, nil
		}
	} else if msg, ok := ValidateStep(cur, next.Answers); !ok {
		next.LastError = msg
		next.LastErrorStep = cur.Key
		next.PageErrors = make(map[domain.AnswerKey]string)
		e.validationFailed(ctx, next, cur.ID, map[domain.AnswerKey]string{cur.Key: msg})
		return next, nil
	}

	next.ClearErrors()
	if next.StepIndex >= len(steps)-1 {
		return e.complete(ctx, next, len(steps)), nil
	}
	next.StepIndex++

	e.logger.Debug("advanced", "session_id", next.SessionID, "step_index", next.StepIndex)
	if e.hooks.OnAdvance != nil {
		e.hooks.OnAdvance(ctx, e.stepEvent(domain.EventAdvance, next, steps, steps[next.StepIndex].ID))
	}
	return next, nil
}

// Prev clears errors and moves the cursor back without validating. From the
// completion display it returns to the last step.
func (e *Engine) Prev(ctx context.Context, j *domain.Journey, state *domain.State) (*domain.State, error) {
	if state.Status == domain.StatusClosed {
		return nil, domain.ErrSessionClosed
	}
	next := state.Clone()
	next.ClearErrors()

	if next.Status == domain.StatusComplete {
		next.Status = domain.StatusOpen
	} else {
		next.StepIndex--
	}
	steps := e.rebuild(j, next)

	if e.hooks.OnRetreat != nil && len(steps) > 0 {
		e.hooks.OnRetreat(ctx, e.stepEvent(domain.EventRetreat, next, steps, steps[next.StepIndex].ID))
	}
	return next, nil
}

// Close discards answers and errors. Closing a closed session is a no-op.
func (e *Engine) Close(ctx context.Context, state *domain.State) *domain.State {
	if state.Status == domain.StatusClosed {
		return state.Clone()
	}
	closed := domain.NewState(state.SessionID, state.JourneyID, state.Mode)
	closed.Status = domain.StatusClosed

	e.logger.Debug("session closed", "session_id", state.SessionID)
	if e.hooks.OnSessionClose != nil {
		e.hooks.OnSessionClose(ctx, &domain.SessionEvent{
			EventBase: e.base(domain.EventSessionClose, closed),
			Mode:      closed.Mode,
		})
	}
	return closed
}

// AddInstance appends a repeat instance under parentID. It reports false,
// leaving state unchanged, when the list is already at max.
func (e *Engine) AddInstance(ctx context.Context, j *domain.Journey, state *domain.State, parentID string) (*domain.State, string, bool, error) {
	parent, err := e.repeatParent(j, state, parentID)
	if err != nil {
		return nil, "", false, err
	}
	next := state.Clone()
	id, ok := AddInstance(parent, &next.Answers, e.newID)
	if !ok {
		return state.Clone(), "", false, nil
	}
	e.rebuild(j, next)

	if e.hooks.OnInstanceAdded != nil {
		e.hooks.OnInstanceAdded(ctx, &domain.InstanceEvent{
			EventBase:  e.base(domain.EventInstanceAdded, next),
			ParentID:   parentID,
			InstanceID: id,
			Count:      len(next.Answers.Instances[parentID]),
		})
	}
	return next, id, true, nil
}

// RemoveInstance drops a repeat instance and its answers. It reports false,
// leaving state unchanged, when the instance is unknown or the list is at min.
func (e *Engine) RemoveInstance(ctx context.Context, j *domain.Journey, state *domain.State, parentID, instanceID string) (*domain.State, bool, error) {
	parent, err := e.repeatParent(j, state, parentID)
	if err != nil {
		return nil, false, err
	}
	next := state.Clone()
	if !RemoveInstance(parent, &next.Answers, instanceID) {
		return state.Clone(), false, nil
	}
	for k := range next.PageErrors {
		if k.ParentID == parentID && k.InstanceID == instanceID {
			delete(next.PageErrors, k)
		}
	}
	if next.LastErrorStep.ParentID == parentID && next.LastErrorStep.InstanceID == instanceID {
		next.LastError = ""
		next.LastErrorStep = domain.AnswerKey{}
	}
	e.rebuild(j, next)

	if e.hooks.OnInstanceRemoved != nil {
		e.hooks.OnInstanceRemoved(ctx, &domain.InstanceEvent{
			EventBase:  e.base(domain.EventInstanceRemoved, next),
			ParentID:   parentID,
			InstanceID: instanceID,
			Count:      len(next.Answers.Instances[parentID]),
		})
	}
	return next, true, nil
}

func (e *Engine) repeatParent(j *domain.Journey, state *domain.State, parentID string) (*domain.Question, error) {
	if state.Status == domain.StatusClosed {
		return nil, domain.ErrSessionClosed
	}
	parent, ok := NewIndex(j).Question(parentID)
	if !ok || !parent.HasRepeatableFollowUp() {
		return nil, fmt.Errorf("%w: %s has no repeatable follow-up", domain.ErrUnknownStep, parentID)
	}
	return parent, nil
}

// rebuild recomputes the step list and clamps the cursor into it.
func (e *Engine) rebuild(j *domain.Journey, state *domain.State) []domain.Step {
	steps := Steps(j, &state.Answers, state.Mode, e.newID)
	state.StepIndex = clampIndex(state.StepIndex, len(steps))
	return steps
}

func (e *Engine) complete(ctx context.Context, state *domain.State, steps int) *domain.State {
	state.Status = domain.StatusComplete

	e.logger.Debug("session complete", "session_id", state.SessionID)
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(ctx, &domain.SessionEvent{
			EventBase: e.base(domain.EventComplete, state),
			Mode:      state.Mode,
			Steps:     steps,
		})
	}
	return state
}

func (e *Engine) validationFailed(ctx context.Context, state *domain.State, stepID string, errs map[domain.AnswerKey]string) {
	e.logger.Debug("validation failed", "session_id", state.SessionID, "step", stepID, "errors", len(errs))
	if e.hooks.OnValidationFailed != nil {
		e.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
			EventBase: e.base(domain.EventValidationFailed, state),
			StepID:    stepID,
			Errors:    errs,
		})
	}
}

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: state.SessionID,
		JourneyID: state.JourneyID,
	}
}

func (e *Engine) stepEvent(t domain.EventType, state *domain.State, steps []domain.Step, stepID string) *domain.StepEvent {
	ev := &domain.StepEvent{
		EventBase: e.base(t, state),
		StepID:    stepID,
		StepIndex: state.StepIndex,
	}
	if len(steps) > 0 {
		ev.PageID = steps[clampIndex(state.StepIndex, len(steps))].PageID
	}
	return ev
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
