package domain

import (
	"context"

	"warden/internal/core/events"
)

// NotifierPort is the outbound delivery sink
// delivery is fire-and-forget at this layer; retry policy belongs to the
// implementation behind the port
type NotifierPort interface {
	Send(ctx context.Context, n Notification) error
}

// DeliveryLogPort appends delivery outcomes to the columnar log
type DeliveryLogPort interface {
	Append(ctx context.Context, rec DeliveryRecord) error
}

// DispatcherPort consumes canonical events for alerting
type DispatcherPort interface {
	ProcessEvent(ctx context.Context, ev events.DomainEvent) error
}

// DigestPort drains buffered sub-critical alerts into summary notifications
type DigestPort interface {
	SendDigests(ctx context.Context) error
}

// Ports bundles what the alerts module exposes
type Ports struct {
	Dispatcher DispatcherPort
	Digests    DigestPort
}
