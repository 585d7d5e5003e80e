package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/pkg/codec"
	"github.com/aretw0/journeys/pkg/domain"
)

// Document is the raw journey payload Loam hands back: the whole object of
// a JSON or YAML file, or the frontmatter of a Markdown file.
type Document = map[string]any

// WatchPattern selects the documents whose changes are reported.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader adapts a Loam repository to ports.JourneyLoader.
type Loader struct {
	Repo   *loam.TypedRepository[Document]
	Logger *slog.Logger
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Document]) *Loader {
	return &Loader{Repo: repo, Logger: logging.NewNop()}
}

// Open initializes a read-only, strict Loam repository at path. Strict mode
// keeps numbers as json.Number across every serializer.
func Open(path string, opts ...loam.Option) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	opts = append([]loam.Option{loam.WithStrict(true), loam.WithReadOnly(true)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Document](repo)), nil
}

// GetJourney decodes the document with the given ID into a normalized journey.
func (l *Loader) GetJourney(ctx context.Context, id string) (*domain.Journey, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		ids, listErr := l.ListJourneys(ctx)
		if listErr == nil && !slices.Contains(ids, id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	j, issues, err := codec.FromMap(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("journey %s: %w", id, err)
	}
	if len(issues) > 0 {
		l.logger().Debug("journey normalized", "journey", id, "issues", len(issues))
	}
	j.ID = trimExtension(id)
	return j, nil
}

// ListJourneys lists every journey document in the repository.
func (l *Loader) ListJourneys(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: journey %q is defined in both %q and %q", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return logging.NewNop()
	}
	return l.Logger
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
