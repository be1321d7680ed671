package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/intake/internal/compiler"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-chi/chi/v5"
)

// Event names written on the SSE stream.
const (
	EventDiff  = "diff"
	EventPatch = "patch"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// HasSubscribers reports whether anyone watches sessionID.
func (sm *StreamManager) HasSubscribers(sessionID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID]) > 0
}

func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping event", "session_id", sessionID, "event", ev.Name)
		}
	}
}

// publish broadcasts what changed in sessionID since before: the state diff
// and a JSON merge patch of the compiled document.
func (s *Server) publish(ctx context.Context, sessionID string, before *domain.State) {
	after, err := s.Driver.State(ctx, sessionID)
	if err != nil {
		s.Logger.Warn("SSE: failed to load state", "session_id", sessionID, "err", err)
		return
	}

	if diff := domain.Diff(before, after); diff != nil {
		if data, err := sonic.MarshalString(diff); err == nil {
			s.Streams.Broadcast(sessionID, Event{Name: EventDiff, Data: data})
		}
	}

	patch, err := DataPatch(before, after)
	if err != nil {
		s.Logger.Warn("SSE: failed to build patch", "session_id", sessionID, "err", err)
		return
	}
	if patch != "" {
		s.Streams.Broadcast(sessionID, Event{Name: EventPatch, Data: patch})
	}
}

// DataPatch returns the JSON merge patch (RFC 7386) turning the compiled
// document of before into that of after, or "" when they are equal.
// A nil before is compiled from an empty state.
func DataPatch(before, after *domain.State) (string, error) {
	if before == nil {
		before = domain.NewState(after.SessionID)
	}
	oldDoc, err := sonic.Marshal(compiler.Compile(before))
	if err != nil {
		return "", err
	}
	newDoc, err := sonic.Marshal(compiler.Compile(after))
	if err != nil {
		return "", err
	}
	if jsonpatch.Equal(oldDoc, newDoc) {
		return "", nil
	}
	patch, err := jsonpatch.CreateMergePatch(oldDoc, newDoc)
	if err != nil {
		return "", fmt.Errorf("failed to create merge patch: %w", err)
	}
	return string(patch), nil
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The optional watch query lists the diff fields a client cares about:
// answers, current_vehicle, vehicles, status, cursor and data.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Driver.Status(r.Context(), sessionID); err != nil {
		s.fail(w, "subscribe", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	s.Logger.Info("SSE: subscribing to session updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !wants(watchList, ev) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

func wants(watchList []string, ev Event) bool {
	if len(watchList) == 0 {
		return true
	}
	if ev.Name == EventPatch {
		for _, field := range watchList {
			if strings.TrimSpace(field) == "data" {
				return true
			}
		}
		return false
	}

	var diff domain.StateDiff
	if err := sonic.UnmarshalString(ev.Data, &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "answers":
			if len(diff.Answers) > 0 {
				return true
			}
		case "current_vehicle":
			if len(diff.CurrentVehicle) > 0 {
				return true
			}
		case "vehicles":
			if len(diff.VehiclesAppended) > 0 {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "cursor":
			if diff.Cursor != nil {
				return true
			}
		}
	}
	return false
}
