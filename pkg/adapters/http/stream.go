package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/domain"
)

// allRuns is the topic every event is also published on.
const allRuns = "*"

// subscriberBuffer is how many events a slow client may lag behind before drops.
const subscriberBuffer = 32

// StreamManager fans engine events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for topic. The returned func unregisters and
// closes it; calling it more than once is safe.
func (sm *StreamManager) Subscribe(topic string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, subscriberBuffer)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[topic]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		if len(subs) == 0 {
			delete(sm.subscribers, topic)
		}
		close(ch)
	}
}

// Close ends every subscription so streaming handlers return, e.g. on server shutdown.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for topic, subs := range sm.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(sm.subscribers, topic)
	}
}

// Subscribers returns the number of open subscriptions across all topics.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}

// Broadcast sends msg to every subscriber of topic without blocking.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping event", "topic", topic)
		}
	}
}

// Hooks returns lifecycle hooks that publish engine events to subscribers.
// Provider prompts and replies are stripped and node diffs redacted since
// they carry the user's phrases.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	node := func(_ context.Context, e *domain.NodeEvent) {
		redacted := *e
		if d := e.Diff.Redacted(); d != nil && !d.IsEmpty() {
			redacted.Diff = d
		} else {
			redacted.Diff = nil
		}
		sm.publish(e.RunID, e.Type, &redacted)
	}
	provider := func(_ context.Context, e *domain.ProviderEvent) {
		redacted := *e
		redacted.Prompt = ""
		redacted.Reply = ""
		sm.publish(e.RunID, e.Type, &redacted)
	}
	return domain.LifecycleHooks{
		OnNodeEnter:      node,
		OnNodeLeave:      node,
		OnProviderCall:   provider,
		OnProviderReturn: provider,
	}
}

func (sm *StreamManager) publish(runID string, kind domain.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "error", err)
		return
	}
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", kind, data)
	if runID != "" {
		sm.Broadcast(runID, msg)
	}
	sm.Broadcast(allRuns, msg)
}

// SubscribeEvents handles GET /v1/events (SSE). ?run_id narrows the stream to one run.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	topic := r.URL.Query().Get("run_id")
	if topic == "" {
		topic = allRuns
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	s.logger.Info("SSE: client subscribed", "topic", topic)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "topic", topic)
			drain(w, ch)
			flusher.Flush()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		}
	}
}

// drain writes whatever is already buffered without waiting for more.
func drain(w http.ResponseWriter, ch <-chan string) {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprint(w, msg)
		default:
			return
		}
	}
}
