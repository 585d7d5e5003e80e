package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/pkg/codec"
	"github.com/aretw0/journeys/pkg/domain"
)

// Loader implements ports.JourneyLoader over a flat directory of journey
// documents. The file name without its extension is the journey ID.
type Loader struct {
	Dir    string
	Logger *slog.Logger
}

// NewLoader creates a Loader reading from dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Logger: logging.NewNop()}
}

// GetJourney reads, decodes and normalizes the journey with the given ID.
func (l *Loader) GetJourney(ctx context.Context, id string) (*domain.Journey, error) {
	if id == "" || filepath.Base(id) != id {
		return nil, fmt.Errorf("%w: %q", domain.ErrJourneyNotFound, id)
	}
	for _, ext := range codec.Extensions {
		path := filepath.Join(l.Dir, id+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read journey %s: %w", id, err)
		}
		format, _ := codec.FormatFromPath(path)
		j, issues, err := codec.Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("journey %s: %w", id, err)
		}
		if len(issues) > 0 {
			l.logger().Debug("journey normalized", "journey", id, "issues", len(issues))
		}
		j.ID = id
		return j, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
}

// ListJourneys returns the IDs of every journey document in the directory.
func (l *Loader) ListJourneys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || !slices.Contains(codec.Extensions, ext) {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch emits the ID of every journey document that is written, created,
// removed or renamed in the directory.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch journeys: %w", err)
	}
	if err := w.Add(l.Dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", l.Dir, err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !slices.Contains(codec.Extensions, strings.ToLower(filepath.Ext(ev.Name))) {
					continue
				}
				base := filepath.Base(ev.Name)
				id := strings.TrimSuffix(base, filepath.Ext(base))
				l.logger().Debug("journey changed", "journey", id, "op", ev.Op.String())
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger().Warn("journey watcher error", "error", err)
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
