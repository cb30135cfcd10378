package domain

import "context"

// EntitlementPort is the read surface the dispatchers and the engine consume
type EntitlementPort interface {
	// GetTier returns the owner's tier; unknown owners resolve to free
	GetTier(ctx context.Context, ownerID string) (Tier, error)
	// GetMonthlyCap returns the owner's monthly spending cap
	GetMonthlyCap(ctx context.Context, ownerID string) (int64, error)
	// GetWallet returns the owner's bound wallet address, empty when unbound
	GetWallet(ctx context.Context, ownerID string) (string, error)
}

// AdminPort mutates account records
type AdminPort interface {
	UpsertAccount(ctx context.Context, a Account) error
}

// Ports bundles what the accounts module exposes
type Ports struct {
	Entitlement EntitlementPort
	Admin       AdminPort
}
