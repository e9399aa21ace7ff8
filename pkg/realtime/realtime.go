// Package realtime is an in-process publish/subscribe hub used to fan out
// load progress to any number of listeners, such as websocket sessions.
//
// Delivery is best effort: every listener has its own buffered channel and a
// listener whose buffer is full misses the event. A slow listener never
// holds up the publisher. The hub remembers the last event so that late
// listeners can start from the current state.
package realtime

import "sync"

// Hub fans out events of type T.
type Hub[T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]chan T
	nextID    uint64
	bufSize   int

	last    T
	hasLast bool
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub[T any](bufSize int) *Hub[T] {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub[T]{
		listeners: make(map[uint64]chan T),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel. When an
// event has already been published the channel starts with it. Callers must
// Unregister the id when done.
func (h *Hub[T]) Register() (uint64, <-chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan T, h.bufSize)
	if h.hasLast {
		ch <- h.last
	}
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored, so it is safe to call more than once.
func (h *Hub[T]) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener with room in its buffer.
func (h *Hub[T]) Broadcast(ev T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last, h.hasLast = ev, true
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Last returns the most recent event.
func (h *Hub[T]) Last() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.hasLast
}

// Size returns the number of listeners.
func (h *Hub[T]) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close unregisters every listener.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}
