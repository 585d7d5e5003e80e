package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/journeys/pkg/codec"
	"github.com/aretw0/journeys/pkg/domain"
)

// Loader implements ports.JourneyLoader over an in-memory set of journeys.
// Safe for concurrent use.
type Loader struct {
	mu       sync.RWMutex
	journeys map[string]*domain.Journey
}

// NewLoader creates a Loader from raw documents keyed by journey ID.
// Documents may be JSON or YAML.
func NewLoader(docs map[string]string) (*Loader, error) {
	l := &Loader{journeys: make(map[string]*domain.Journey, len(docs))}
	for id, doc := range docs {
		j, _, err := codec.Decode([]byte(doc), codec.FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("journey %s: %w", id, err)
		}
		if j.ID == "" {
			j.ID = id
		}
		l.journeys[id] = j
	}
	return l, nil
}

// NewFromJourneys creates a Loader from domain objects. Journeys are
// normalized on the way in, which keeps tests short.
func NewFromJourneys(journeys ...*domain.Journey) (*Loader, error) {
	l := &Loader{journeys: make(map[string]*domain.Journey, len(journeys))}
	for _, j := range journeys {
		if err := l.Put(j); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a journey.
func (l *Loader) Put(j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("journey missing ID")
	}
	cp := j.Clone()
	codec.Prepare(cp)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.journeys[cp.ID] = cp
	return nil
}

// GetJourney returns a copy of the journey with the given ID.
func (l *Loader) GetJourney(ctx context.Context, id string) (*domain.Journey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	j, ok := l.journeys[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
	}
	return j.Clone(), nil
}

// ListJourneys returns all journey IDs in sorted order.
func (l *Loader) ListJourneys(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.journeys))
	for id := range l.journeys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
