package ports

import (
	"context"

	"github.com/aretw0/journeys/pkg/domain"
)

// PreviewEngine is the surface hosts (HTTP, MCP, terminal) drive. It owns
// journey lookup; callers own session state and pass it on every call.
type PreviewEngine interface {
	// Journey returns the journey with the given ID.
	Journey(ctx context.Context, id string) (*domain.Journey, error)

	// Journeys lists the available journey IDs.
	Journeys(ctx context.Context) ([]string, error)

	// Open creates a session over a journey.
	Open(ctx context.Context, journeyID, sessionID string, mode domain.PreviewMode) (*domain.State, error)

	// Steps returns the current step list for the session.
	Steps(ctx context.Context, state *domain.State) ([]domain.Step, error)

	// Fields returns the fields shown at the cursor: every visible field of
	// the current page in page mode, or the current question.
	Fields(ctx context.Context, state *domain.State) ([]domain.Step, error)

	Answer(ctx context.Context, state *domain.State, key domain.AnswerKey, value any) (*domain.State, error)
	Next(ctx context.Context, state *domain.State) (*domain.State, error)
	Prev(ctx context.Context, state *domain.State) (*domain.State, error)
	Close(ctx context.Context, state *domain.State) *domain.State

	// AddInstance reports false when the repeat is already at its maximum.
	AddInstance(ctx context.Context, state *domain.State, parentID string) (*domain.State, string, bool, error)

	// RemoveInstance reports false when the instance is unknown or the
	// repeat is already at its minimum.
	RemoveInstance(ctx context.Context, state *domain.State, parentID, instanceID string) (*domain.State, bool, error)
}
