package notifier

import "sync"

// DefaultHistorySize bounds the in-memory capture ring.
const DefaultHistorySize = 50

// History is a bounded, newest-first ring of captured events. It backs
// the live viewer and debug output; nothing is persisted.
type History struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewHistory creates a history keeping at most max events.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add records an event, evicting the oldest when full.
func (h *History) Add(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, ev)
	if len(h.events) > h.max {
		h.events = h.events[len(h.events)-h.max:]
	}
}

// Recent returns the captured events, newest first.
func (h *History) Recent() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, len(h.events))
	for i, ev := range h.events {
		out[len(h.events)-1-i] = ev
	}
	return out
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// Clear drops all retained events.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
