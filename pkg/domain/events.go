package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionOpen      EventType = "session_open"
	EventAnswer           EventType = "answer"
	EventAdvance          EventType = "advance"
	EventRetreat          EventType = "retreat"
	EventValidationFailed EventType = "validation_failed"
	EventComplete         EventType = "complete"
	EventSessionClose     EventType = "session_close"
	EventInstanceAdded    EventType = "instance_added"
	EventInstanceRemoved  EventType = "instance_removed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	JourneyID string    `json:"journeyId"`
}

// SessionEvent reports open, close and completion.
type SessionEvent struct {
	EventBase
	Mode  PreviewMode `json:"mode"`
	Steps int         `json:"steps"`
}

// StepEvent reports cursor movement and answers.
type StepEvent struct {
	EventBase
	StepID    string `json:"stepId"`
	StepIndex int    `json:"stepIndex"`
	PageID    string `json:"pageId,omitempty"`
}

// ValidationEvent reports a blocked advance.
type ValidationEvent struct {
	EventBase
	StepID string               `json:"stepId,omitempty"`
	Errors map[AnswerKey]string `json:"errors"`
}

// InstanceEvent reports repeat-instance bookkeeping changes.
type InstanceEvent struct {
	EventBase
	ParentID   string `json:"parentId"`
	InstanceID string `json:"instanceId"`
	Count      int    `json:"count"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnSessionOpen      func(context.Context, *SessionEvent)
	OnSessionClose     func(context.Context, *SessionEvent)
	OnComplete         func(context.Context, *SessionEvent)
	OnAnswer           func(context.Context, *StepEvent)
	OnAdvance          func(context.Context, *StepEvent)
	OnRetreat          func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)
	OnInstanceAdded    func(context.Context, *InstanceEvent)
	OnInstanceRemoved  func(context.Context, *InstanceEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSessionOpen:      chain(h.OnSessionOpen, other.OnSessionOpen),
		OnSessionClose:     chain(h.OnSessionClose, other.OnSessionClose),
		OnComplete:         chain(h.OnComplete, other.OnComplete),
		OnAnswer:           chain(h.OnAnswer, other.OnAnswer),
		OnAdvance:          chain(h.OnAdvance, other.OnAdvance),
		OnRetreat:          chain(h.OnRetreat, other.OnRetreat),
		OnValidationFailed: chain(h.OnValidationFailed, other.OnValidationFailed),
		OnInstanceAdded:    chain(h.OnInstanceAdded, other.OnInstanceAdded),
		OnInstanceRemoved:  chain(h.OnInstanceRemoved, other.OnInstanceRemoved),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
