package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/journeys/pkg/domain"
)

// LogHooks logs every lifecycle event. Answers and cursor moves are logged
// at debug level; the rest at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	session := func(msg string) func(context.Context, *domain.SessionEvent) {
		return func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, msg,
				"session_id", e.SessionID,
				"journey", e.JourneyID,
				"mode", e.Mode,
				"steps", e.Steps,
			)
		}
	}
	step := func(msg string) func(context.Context, *domain.StepEvent) {
		return func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, msg,
				"session_id", e.SessionID,
				"journey", e.JourneyID,
				"step", e.StepID,
				"index", e.StepIndex,
			)
		}
	}
	instance := func(msg string) func(context.Context, *domain.InstanceEvent) {
		return func(ctx context.Context, e *domain.InstanceEvent) {
			logger.InfoContext(ctx, msg,
				"session_id", e.SessionID,
				"journey", e.JourneyID,
				"parent", e.ParentID,
				"instance", e.InstanceID,
				"count", e.Count,
			)
		}
	}

	return domain.LifecycleHooks{
		OnSessionOpen:  session("session_open"),
		OnSessionClose: session("session_close"),
		OnComplete:     session("session_complete"),
		OnAnswer:       step("answer"),
		OnAdvance:      step("advance"),
		OnRetreat:      step("retreat"),
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.InfoContext(ctx, "validation_failed",
				"session_id", e.SessionID,
				"journey", e.JourneyID,
				"step", e.StepID,
				"fields", len(e.Errors),
			)
		},
		OnInstanceAdded:   instance("instance_added"),
		OnInstanceRemoved: instance("instance_removed"),
	}
}
