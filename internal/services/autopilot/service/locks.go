package service

import (
	"sync"
	"time"
)

// lockTable is the in-flight lock map keyed by rule id + ":" + domain.
// tryLock is an atomic test-and-insert: two concurrent events for the same
// rule+domain cannot both pass the no-lock check
type lockTable struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func newLockTable() *lockTable {
	return &lockTable{held: make(map[string]time.Time)}
}

func (t *lockTable) tryLock(key string, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.held[key]; ok {
		return false
	}
	t.held[key] = at
	return true
}

// unlock releases the lock only for the holder that installed it: if the
// janitor freed the key and another execution re-locked it, the stored
// timestamp differs and the late holder's release is a no-op
func (t *lockTable) unlock(key string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if held, ok := t.held[key]; ok && held.Equal(at) {
		delete(t.held, key)
	}
}

// cleanupStale removes locks installed before now-maxAge and returns their keys
// a stale lock means an execution path leaked it; removal unblocks the pair
func (t *lockTable) cleanupStale(maxAge time.Duration, now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var stale []string
	cutoff := now.Add(-maxAge)
	for key, at := range t.held {
		if at.Before(cutoff) {
			delete(t.held, key)
			stale = append(stale, key)
		}
	}
	return stale
}

func (t *lockTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.held)
}
