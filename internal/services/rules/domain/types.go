// Package domain defines the types and interfaces for the rules service
package domain

import (
	"time"

	"warden/internal/core/match"
)

// AlertRule is a user-owned notification rule
// Domain and DomainPattern are mutually exclusive: a rule watches one
// concrete name or a wildcard pattern, never both
type AlertRule struct {
	ID            string
	OwnerID       string
	Kind          match.AlertKind
	Domain        string
	DomainPattern string
	Conditions    match.AlertConditions
	Platform      string
	Active        bool
	TriggerCount  int64
	LastTriggered *time.Time
	CreatedAt     time.Time
}

// Concrete reports whether the rule is bound to an exact domain
func (r AlertRule) Concrete() bool { return r.Domain != "" }

// AutoActionRule is a user-owned autonomous action rule
// MaxAmount bounds any single action regardless of conditions
type AutoActionRule struct {
	ID             string
	OwnerID        string
	Kind           match.ActionKind
	Conditions     match.ActionConditions
	MaxAmount      int64
	Active         bool
	ExecutionCount int64
	LastExecuted   *time.Time
	CreatedAt      time.Time
}

// ActionStatus is the terminal state of one execution attempt
type ActionStatus string

const (
	// ActionSuccess marks a confirmed submission
	ActionSuccess ActionStatus = "success"
	// ActionFailed marks any abort or submission failure
	ActionFailed ActionStatus = "failed"
)

// ActionRecord is one append-only execution log entry
type ActionRecord struct {
	ID        string
	RuleID    string
	OwnerID   string
	Domain    string
	Amount    int64
	TxHash    *string
	Status    ActionStatus
	Error     *string
	CreatedAt time.Time
}
