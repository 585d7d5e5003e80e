package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/pkg/domain"
)

// Watchable is implemented by engines whose journeys can change on disk.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// StreamManager fans state diffs out to SSE subscribers per session.
type StreamManager struct {
	mu     sync.RWMutex
	subs   map[string]map[chan string]struct{}
	logger *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subs:   make(map[string]map[chan string]struct{}),
		logger: logging.NewNop(),
	}
}

// Subscribe registers a listener for sessionID. Call the returned func to
// unsubscribe.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if sm.subs[sessionID] == nil {
		sm.subs[sessionID] = make(map[chan string]struct{})
	}
	sm.subs[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subs[sessionID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(sm.subs, sessionID)
			}
		}
	}
}

// Subscribers returns the number of listeners on sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subs[sessionID])
}

// Broadcast sends msg to every listener of sessionID. Slow listeners miss
// the message instead of blocking the writer.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subs[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("dropping event for slow subscriber", "session_id", sessionID)
		}
	}
}

func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.streamReloads(w, r, flusher)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				watch = append(watch, f)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("sse subscribed", "session_id", sessionID)

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) streamReloads(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	watcher, ok := s.Engine.(Watchable)
	if !ok {
		s.writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "journey watching is not supported"})
		return
	}
	events, err := watcher.Watch(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
		return
	}

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// matchesWatch reports whether the diff touches any watched field.
// Messages that are not diffs pass through.
func matchesWatch(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "answers":
			if len(diff.Answers) > 0 {
				return true
			}
		case "instances":
			if len(diff.Instances) > 0 {
				return true
			}
		case "status":
			if diff.Status != nil || diff.StepIndex != nil {
				return true
			}
		case "errors":
			if diff.LastError != nil || len(diff.PageErrors) > 0 || diff.PageErrorsCleared {
				return true
			}
		}
	}
	return false
}
