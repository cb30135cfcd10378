package service

import (
	"sync"
	"time"

	"warden/internal/platform/logger"
)

// defaultDigestPerOwner bounds how many lines one owner can accumulate
// between daily drains
const defaultDigestPerOwner = 200

// DigestEntry is one buffered sub-critical alert line
type DigestEntry struct {
	Platform string
	Line     string
	At       time.Time
}

// DigestBuffer accumulates sub-critical alerts for free-tier owners until
// the scheduler's daily digest job drains it
type DigestBuffer struct {
	mu       sync.Mutex
	perOwner int
	entries  map[string][]DigestEntry
	log      logger.Logger
}

// NewDigestBuffer constructs a DigestBuffer
func NewDigestBuffer(perOwner int, log logger.Logger) *DigestBuffer {
	if perOwner <= 0 {
		perOwner = defaultDigestPerOwner
	}
	return &DigestBuffer{
		perOwner: perOwner,
		entries:  make(map[string][]DigestEntry),
		log:      log.With().Str("component", "digest").Logger(),
	}
}

// Add buffers one entry for owner, dropping the oldest past the ceiling
func (b *DigestBuffer) Add(ownerID string, e DigestEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.entries[ownerID]
	if len(list) >= b.perOwner {
		b.log.Warn().Str("owner_id", ownerID).Msg("digest buffer full, oldest entry dropped")
		list = list[1:]
	}
	b.entries[ownerID] = append(list, e)
}

// Drain atomically swaps out and returns all buffered entries
func (b *DigestBuffer) Drain() map[string][]DigestEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.entries
	b.entries = make(map[string][]DigestEntry)
	return out
}

// Len reports the number of owners currently buffered
func (b *DigestBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
