package httpapi

import (
	"encoding/json"
	"sync"
)

// ProgressEvent is one keyword's pipeline completion, broadcast to every
// /monitoring/stream subscriber. Fields mirror pipeline.Outcome, not the
// type itself, so httpapi stays decoupled from the pipeline package's
// internal Outcome shape.
type ProgressEvent struct {
	Keyword   string  `json:"keyword"`
	Status    string  `json:"status"`
	Composite float64 `json:"composite"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Err       string  `json:"err,omitempty"`
}

// Hub fans out ProgressEvents to every connected /monitoring/stream
// websocket client. Grounded on the publish/subscribe shape every
// streaming client in the pack implements ad hoc (e.g.
// cryptorun/internal/providers/kraken/websocket.go's handler map), here
// simplified to one fixed event type since KeywordScout has one channel,
// not per-pair subscriptions.
type Hub struct {
	mu   sync.Mutex
	subs map[chan ProgressEvent]struct{}
	last ProgressEvent
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan ProgressEvent]struct{})}
}

// Subscribe registers a new channel and returns it along with an
// unsubscribe func the caller must defer.
func (h *Hub) Subscribe() (chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// Publish broadcasts ev to every current subscriber, dropping it for any
// subscriber whose channel is full rather than blocking the pipeline.
func (h *Hub) Publish(ev ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = ev
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Snapshot returns the most recently published event, or the zero value
// if nothing has been published yet — used by /monitoring/dashboard's
// plain-JSON poller.
func (h *Hub) Snapshot() ProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (ev ProgressEvent) marshal() ([]byte, error) {
	return json.Marshal(ev)
}
