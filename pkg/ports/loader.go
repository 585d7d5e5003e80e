package ports

import (
	"context"

	"github.com/aretw0/journeys/pkg/domain"
)

// JourneyLoader retrieves journey documents. The storage layer (Loam,
// directory, memory) stays decoupled from the engine.
type JourneyLoader interface {
	// GetJourney returns the decoded and normalized journey with the given ID.
	// It returns domain.ErrJourneyNotFound (possibly wrapped) when absent.
	GetJourney(ctx context.Context, id string) (*domain.Journey, error)

	// ListJourneys returns the IDs of every available journey, sorted.
	ListJourneys(ctx context.Context) ([]string, error)
}

// Watchable is implemented by loaders that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the ID of every journey that
	// changes. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
