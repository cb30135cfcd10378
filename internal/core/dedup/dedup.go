// Package dedup provides a capacity-bounded window of recently seen event keys
package dedup

import "sync"

// Window remembers the most recent keys up to a fixed capacity
// once full the oldest key is evicted, making this best-effort rather
// than exactly-once
type Window struct {
	mu    sync.Mutex
	cap   int
	seen  map[string]struct{}
	order []string
	head  int // ring index of the oldest entry
}

// DefaultCapacity bounds a window when the caller passes 0
const DefaultCapacity = 4096

// NewWindow constructs a Window holding at most capacity keys
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{
		cap:   capacity,
		seen:  make(map[string]struct{}, capacity),
		order: make([]string, 0, capacity),
	}
}

// Contains reports whether key is inside the window
func (w *Window) Contains(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[key]
	return ok
}

// Add inserts key, evicting the oldest entry when at capacity
// adding a key already present is a no-op
func (w *Window) Add(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[key]; ok {
		return
	}
	if len(w.order) < w.cap {
		w.order = append(w.order, key)
	} else {
		delete(w.seen, w.order[w.head])
		w.order[w.head] = key
		w.head = (w.head + 1) % w.cap
	}
	w.seen[key] = struct{}{}
}

// Len returns the number of keys currently held
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
