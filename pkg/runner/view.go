package runner

import (
	"context"

	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
)

// View combines a session state with what it shows for rich clients
// (terminal, Web, MCP).
type View struct {
	State    *domain.State `json:"state"`
	Current  *domain.Step  `json:"current,omitempty"`
	Fields   []domain.Step `json:"fields,omitempty"`
	Position int           `json:"position"` // 1-based
	Total    int           `json:"total"`
	Complete bool          `json:"complete"`
}

// BuildView renders the session at its cursor.
func BuildView(ctx context.Context, engine ports.PreviewEngine, state *domain.State) (*View, error) {
	steps, err := engine.Steps(ctx, state)
	if err != nil {
		return nil, err
	}
	fields, err := engine.Fields(ctx, state)
	if err != nil {
		return nil, err
	}

	v := &View{
		State:    state,
		Fields:   fields,
		Total:    len(steps),
		Complete: state.Status == domain.StatusComplete,
	}
	if state.StepIndex >= 0 && state.StepIndex < len(steps) {
		cur := steps[state.StepIndex]
		v.Current = &cur
		v.Position = state.StepIndex + 1
	}
	return v, nil
}

// Transition applies fn and renders the resulting state.
// Even if rendering fails the new state is returned so callers can recover.
func Transition(ctx context.Context, engine ports.PreviewEngine, state *domain.State, fn func(context.Context, *domain.State) (*domain.State, error)) (*View, error) {
	next, err := fn(ctx, state)
	if err != nil {
		return nil, err
	}
	v, err := BuildView(ctx, engine, next)
	if err != nil {
		return &View{State: next}, err
	}
	return v, nil
}

// RepeatParent returns the repeatable follow-up parent the view is focused
// on: the parent of the current instance question, the current question
// itself, or in page mode the first repeatable parent on the page.
func (v *View) RepeatParent() string {
	if v.Current == nil {
		return ""
	}
	candidates := v.Fields
	if v.Current.Kind == domain.StepQuestion {
		candidates = []domain.Step{*v.Current}
	}
	for _, s := range candidates {
		if s.InstanceID != "" {
			return s.ParentQuestionID
		}
		if s.Question != nil && !s.IsFollowUp() && s.Question.HasRepeatableFollowUp() {
			return s.Key.QuestionID
		}
	}
	return ""
}

// Field resolves a page field by 1-based number or by step ID.
func (v *View) Field(ref string) (domain.Step, bool) {
	if n, ok := parseIndex(ref, len(v.Fields)); ok {
		return v.Fields[n-1], true
	}
	if i := domain.FindStep(v.Fields, ref); i >= 0 {
		return v.Fields[i], true
	}
	return domain.Step{}, false
}
