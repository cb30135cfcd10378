// Package domain defines the types and interfaces for the autopilot service
package domain

import (
	"context"
	"time"

	"warden/internal/core/events"
	"warden/internal/core/match"
)

// SubmitRequest is one transaction hand-off to the chain collaborator
type SubmitRequest struct {
	Kind    match.ActionKind `json:"kind"`
	Domain  string           `json:"domain"`
	Amount  int64            `json:"amount"`
	OwnerID string           `json:"owner_id"`
}

// SubmitPort submits actions and awaits synchronous confirmation
// implementations must honor ctx deadlines; the engine bounds the wait
type SubmitPort interface {
	Submit(ctx context.Context, req SubmitRequest) (txHash string, err error)
}

// EnginePort consumes canonical events for autonomous actions
type EnginePort interface {
	ProcessEvent(ctx context.Context, ev events.DomainEvent) error
}

// LockJanitorPort is the stale-lock maintenance surface the scheduler drives
type LockJanitorPort interface {
	// CleanupStaleLocks removes locks older than maxAge and returns their keys
	CleanupStaleLocks(maxAge time.Duration) []string
}

// Ports bundles what the autopilot module exposes
type Ports struct {
	Engine EnginePort
	Locks  LockJanitorPort
}
