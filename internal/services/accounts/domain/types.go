// Package domain defines the types and interfaces for the accounts service
package domain

import "time"

// Tier is an owner's subscription level
type Tier string

const (
	// TierFree gets daily digests for sub-critical alerts and no auto actions
	TierFree Tier = "free"
	// TierBasic gets immediate alerts
	TierBasic Tier = "basic"
	// TierPremium additionally unlocks auto actions
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierBasic, TierPremium:
		return true
	}
	return false
}

// Account is one owner record
type Account struct {
	OwnerID    string
	Tier       Tier
	Wallet     string
	MonthlyCap int64
	CreatedAt  time.Time
}
