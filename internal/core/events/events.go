// Package events defines the canonical domain lifecycle event model
package events

import "time"

// Kind identifies the lifecycle occurrence an event describes
type Kind string

const (
	// KindExpiring signals a domain approaching its expiry date
	KindExpiring Kind = "expiring"
	// KindListed signals a domain listed for sale
	KindListed Kind = "listed"
	// KindSold signals a completed sale
	KindSold Kind = "sold"
	// KindPriceChanged signals a listing price update or auction bid movement
	KindPriceChanged Kind = "price_changed"
	// KindTransferred signals an ownership transfer
	KindTransferred Kind = "transferred"
	// KindAutoActionResult signals the outcome of an engine-submitted action
	KindAutoActionResult Kind = "auto_action_result"
)

// Valid reports whether k is a known event kind
func (k Kind) Valid() bool {
	switch k {
	case KindExpiring, KindListed, KindSold, KindPriceChanged, KindTransferred, KindAutoActionResult:
		return true
	}
	return false
}

// Urgency is an ordinal scale used by expiry alerts
type Urgency int

const (
	// UrgencyLow is the default tier
	UrgencyLow Urgency = iota
	// UrgencyMedium is within a week of expiry
	UrgencyMedium
	// UrgencyHigh is within three days of expiry
	UrgencyHigh
	// UrgencyCritical is within a day of expiry
	UrgencyCritical
)

// String returns the lowercase name for u
func (u Urgency) String() string {
	switch u {
	case UrgencyCritical:
		return "critical"
	case UrgencyHigh:
		return "high"
	case UrgencyMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseUrgency maps a name back to its ordinal, defaulting to low
func ParseUrgency(s string) Urgency {
	switch s {
	case "critical":
		return UrgencyCritical
	case "high":
		return UrgencyHigh
	case "medium":
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ChainRef pins an event to its on-chain origin
type ChainRef struct {
	Block  uint64 `json:"block"`
	TxHash string `json:"tx_hash"`
}

// DomainEvent is the immutable canonical event both dispatchers consume
// kind-specific fields are zero for kinds that do not carry them
type DomainEvent struct {
	Kind   Kind      `json:"kind"`
	Domain string    `json:"domain"`
	At     time.Time `json:"at"`
	Chain  ChainRef  `json:"chain"`

	// expiry payload
	DaysUntilExpiry int     `json:"days_until_expiry,omitempty"`
	Urgency         Urgency `json:"urgency,omitempty"`

	// market payload, amounts in the chain's smallest currency unit
	Price     int64  `json:"price,omitempty"`
	PrevPrice int64  `json:"prev_price,omitempty"`
	SaleType  string `json:"sale_type,omitempty"`
	Seller    string `json:"seller,omitempty"`
	Buyer     string `json:"buyer,omitempty"`

	// transfer payload
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// current owner where the callback carries it
	Owner string `json:"owner,omitempty"`
}

// DedupKey returns the stable identity used by dedup windows
func (e DomainEvent) DedupKey() string {
	return e.Chain.TxHash + ":" + string(e.Kind)
}
