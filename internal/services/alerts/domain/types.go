// Package domain defines the types and interfaces for the alerts service
package domain

import "time"

// Notification is one formatted message handed to the notifier sink
type Notification struct {
	OwnerID          string   `json:"owner_id"`
	Platform         string   `json:"platform"`
	Message          string   `json:"message"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

// DeliveryStatus is the terminal state of one delivery attempt
type DeliveryStatus string

const (
	// DeliverySent marks a successful hand-off to the notifier
	DeliverySent DeliveryStatus = "sent"
	// DeliveryFailed marks a notifier hand-off failure, not retried here
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryRecord is one append-only delivery log row
type DeliveryRecord struct {
	RuleID   string
	OwnerID  string
	Domain   string
	Kind     string
	Platform string
	Status   DeliveryStatus
	Message  string
	At       time.Time
}
