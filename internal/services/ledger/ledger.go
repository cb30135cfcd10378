// Package ledger tracks per-owner monthly spending for auto actions.
//
// State is process local: the engine runs as a single instance and the
// ledger is the shared gate between the autopilot's reserve/release and
// the scheduler's monthly reset, so one mutex covers all of it
package ledger

import (
	"fmt"
	"sync"
	"time"

	perr "warden/internal/platform/errors"
)

type key struct {
	owner string
	month string
}

// Ledger accumulates committed spend per (owner, calendar month UTC)
type Ledger struct {
	mu        sync.Mutex
	committed map[key]int64
}

// New constructs an empty Ledger
func New() *Ledger {
	return &Ledger{committed: make(map[key]int64)}
}

// MonthOf returns the calendar month key for t in UTC, e.g. "2026-08"
func MonthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Reserve atomically checks cap and adds amount to the owner's month.
// A breach leaves the ledger untouched and returns a spending-limit error
func (l *Ledger) Reserve(owner, month string, amount, cap int64) error {
	if amount < 0 {
		return perr.InvalidArgf("reserve amount must not be negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{owner: owner, month: month}
	if l.committed[k]+amount > cap {
		return perr.SpendingLimitf(
			"owner %s month %s: %d + %d exceeds cap %d",
			owner, month, l.committed[k], amount, cap,
		)
	}
	l.committed[k] += amount
	return nil
}

// Release returns a previously reserved amount after a failed submission
func (l *Ledger) Release(owner, month string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{owner: owner, month: month}
	l.committed[k] -= amount
	if l.committed[k] <= 0 {
		delete(l.committed, k)
	}
}

// Committed returns the owner's committed spend for month
func (l *Ledger) Committed(owner, month string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed[key{owner: owner, month: month}]
}

// ResetBefore drops every entry for months strictly before month.
// Month keys sort lexicographically, so string compare is the date compare.
// Idempotent: repeat calls with the same month are no-ops
func (l *Ledger) ResetBefore(month string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k := range l.committed {
		if k.month < month {
			delete(l.committed, k)
			n++
		}
	}
	return n
}

// String reports entry count for logs
func (l *Ledger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("ledger(%d entries)", len(l.committed))
}
