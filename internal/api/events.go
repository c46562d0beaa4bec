package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/plan"
	"github.com/banshee-data/drill.report/internal/sim"
)

// EventBroker fans simulation notifications out to SSE subscribers. Sends
// never block: a slow subscriber drops events rather than stalling the
// tick loop.
type EventBroker struct {
	mu   sync.Mutex
	subs map[int64]chan string
	next int64
}

// NewEventBroker returns an empty broker.
func NewEventBroker() *EventBroker {
	return &EventBroker{subs: make(map[int64]chan string)}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (b *EventBroker) Subscribe() (int64, <-chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan string, 64)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBroker) Unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers a payload to every subscriber, dropping on full buffers.
func (b *EventBroker) Publish(payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (b *EventBroker) publishJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	b.Publish(string(data))
}

// StatusSink returns a sim.StatusSink publishing hole status events.
func (b *EventBroker) StatusSink() sim.StatusSink {
	return sim.StatusSinkFunc(func(holeID string, st hole.Status) {
		b.publishJSON(map[string]string{
			"type":    "status",
			"hole_id": holeID,
			"status":  st.String(),
			"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// SectorNotifier returns a sim.SectorNotifier publishing focus events.
func (b *EventBroker) SectorNotifier() sim.SectorNotifier {
	return sim.SectorNotifierFunc(func(s plan.Sector) {
		b.publishJSON(map[string]string{
			"type":   "sector_focus",
			"sector": s.String(),
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// PublishCompletion announces a finished run to subscribers.
func (b *EventBroker) PublishCompletion(runID string) {
	b.publishJSON(map[string]string{
		"type":   "completed",
		"run_id": runID,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// eventsHandler issues Server-Side Events (SSE) for the simulation's
// status and sector-focus notifications.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

	id, c := s.broker.Subscribe()
	defer s.broker.Unsubscribe(id)

	// Send initial ping to establish connection
	w.Write([]byte(": ping\n\n"))
	flusher.Flush()

	for {
		select {
		case payload, ok := <-c:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
