package domain

import (
	"context"

	"warden/internal/core/match"
)

// ReaderPort is the rule lookup surface both dispatchers consume
type ReaderPort interface {
	// FindAlertRulesByDomain returns active alert rules bound exactly to domain
	FindAlertRulesByDomain(ctx context.Context, domain string, kind match.AlertKind) ([]AlertRule, error)
	// FindAlertRulesByPattern returns active alert rules of kind carrying a
	// non-empty pattern; the pattern test is the caller's responsibility
	FindAlertRulesByPattern(ctx context.Context, kind match.AlertKind) ([]AlertRule, error)
	// FindAutoActionRules returns active auto-action rules of kind
	FindAutoActionRules(ctx context.Context, kind match.ActionKind) ([]AutoActionRule, error)
	// FindConcreteExpiryRules returns active expiry alert rules bound to a
	// concrete domain, for the scheduler's sweep
	FindConcreteExpiryRules(ctx context.Context) ([]AlertRule, error)
}

// WriterPort mutates rule counters and the action log
type WriterPort interface {
	IncrementAlertTrigger(ctx context.Context, ruleID string) error
	IncrementActionExecution(ctx context.Context, ruleID string) error
	AppendActionLog(ctx context.Context, rec ActionRecord) error
}

// AdminPort creates and removes rules; consumed by the collaborator that
// owns the user-facing CRUD surface
type AdminPort interface {
	CreateAlertRule(ctx context.Context, r AlertRule) (AlertRule, error)
	CreateAutoActionRule(ctx context.Context, r AutoActionRule) (AutoActionRule, error)
	DeactivateAlertRule(ctx context.Context, ruleID string) error
	DeactivateAutoActionRule(ctx context.Context, ruleID string) error
}

// ValidatorPort checks rule payloads at write time
type ValidatorPort interface {
	ValidateAlertRule(ctx context.Context, r AlertRule) error
	ValidateAutoActionRule(ctx context.Context, r AutoActionRule) error
}

// Ports bundles what the rules module exposes
type Ports struct {
	Reader    ReaderPort
	Writer    WriterPort
	Admin     AdminPort
	Validator ValidatorPort
}
