// Package match evaluates rule conditions against canonical events
// all functions are pure; malformed patterns never panic, they are
// reported through the optional warn callback and treated as non-matching
package match

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"warden/internal/core/events"
)

// AlertKind enumerates what an AlertRule watches for
type AlertKind string

const (
	// AlertExpiry fires on approaching expiry
	AlertExpiry AlertKind = "expiry"
	// AlertSale fires on listings and completed sales
	AlertSale AlertKind = "sale"
	// AlertTransfer fires on ownership transfers touching the bound wallet
	AlertTransfer AlertKind = "transfer"
	// AlertPrice fires on listing price movement
	AlertPrice AlertKind = "price"
	// AlertAuction fires on auction activity
	AlertAuction AlertKind = "auction"
)

// ActionKind enumerates what an AutoActionRule does
type ActionKind string

const (
	// ActionRenew renews a domain the owner holds
	ActionRenew ActionKind = "renew"
	// ActionBuy purchases a fixed-price listing
	ActionBuy ActionKind = "buy"
	// ActionBid places an incremental bid in an auction
	ActionBid ActionKind = "bid"
)

// AlertConditions is the tagged payload of an AlertRule
// only the fields for the rule's kind are consulted
type AlertConditions struct {
	// expiry
	DaysThreshold int            `json:"days_threshold,omitempty" validate:"omitempty,gt=0,lte=365"`
	MinUrgency    events.Urgency `json:"min_urgency,omitempty" validate:"omitempty,min=0,max=3"`

	// sale / price / auction, inclusive optional bounds
	MinPrice *int64 `json:"min_price,omitempty" validate:"omitempty,min=0"`
	MaxPrice *int64 `json:"max_price,omitempty" validate:"omitempty,min=0"`

	// price movement: "up", "down" or empty for both
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=up down"`

	// sale-type allowlist, empty allows all
	SaleTypes []string `json:"sale_types,omitempty" validate:"omitempty,dive,oneof=fixed auction offer"`
}

// ActionConditions is the tagged payload of an AutoActionRule
type ActionConditions struct {
	// renew
	DaysBeforeExpiry int `json:"days_before_expiry,omitempty" validate:"omitempty,gt=0,lte=365"`

	// buy / bid bounds
	MaxPrice  *int64 `json:"max_price,omitempty" validate:"omitempty,min=0"`
	StopPrice int64  `json:"stop_price,omitempty" validate:"omitempty,min=0"`
	BidStep   int64  `json:"bid_step,omitempty" validate:"omitempty,gt=0"`

	// domain scoping, exact names and wildcard patterns
	Domains        []string `json:"domains,omitempty" validate:"omitempty,dive,min=1"`
	DomainPatterns []string `json:"domain_patterns,omitempty" validate:"omitempty,dive,min=1"`

	// sellers never bought from
	ExcludeSellers []string `json:"exclude_sellers,omitempty"`
}

// WarnFunc receives malformed patterns so callers can log them
type WarnFunc func(pattern string, err error)

// CompilePattern converts a `*` wildcard pattern into an anchored
// case-insensitive regexp. `*` is the only wildcard; every other rune is a
// literal, quoted before it reaches the regexp, and runes outside the
// domain-name alphabet make the pattern malformed
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	for _, r := range pattern {
		if !patternRune(r) {
			return nil, fmt.Errorf("pattern %q: unsupported character %q", pattern, r)
		}
	}
	segs := strings.Split(pattern, "*")
	for i, s := range segs {
		segs[i] = regexp.QuoteMeta(s)
	}
	return regexp.Compile("(?i)^" + strings.Join(segs, ".*") + "$")
}

func patternRune(r rune) bool {
	return r == '*' || r == '.' || r == '-' || r == '_' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Pattern reports whether domain matches the wildcard pattern
// a malformed pattern is non-matching and returned as the error
func Pattern(pattern, domain string) (bool, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(domain), nil
}

// DomainScoped reports whether domain is inside the exact list or any pattern
// empty scoping matches everything
func DomainScoped(domain string, exact, patterns []string, warn WarnFunc) bool {
	if len(exact) == 0 && len(patterns) == 0 {
		return true
	}
	for _, d := range exact {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	for _, p := range patterns {
		ok, err := Pattern(p, domain)
		if err != nil {
			if warn != nil {
				warn(p, err)
			}
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// AlertKindsFor returns the alert rule kinds an event can satisfy
func AlertKindsFor(ev events.DomainEvent) []AlertKind {
	switch ev.Kind {
	case events.KindExpiring:
		return []AlertKind{AlertExpiry}
	case events.KindListed:
		if ev.SaleType == "auction" {
			return []AlertKind{AlertSale, AlertAuction}
		}
		return []AlertKind{AlertSale}
	case events.KindSold:
		return []AlertKind{AlertSale}
	case events.KindPriceChanged:
		if ev.SaleType == "auction" {
			return []AlertKind{AlertPrice, AlertAuction}
		}
		return []AlertKind{AlertPrice}
	case events.KindTransferred:
		return []AlertKind{AlertTransfer}
	}
	return nil
}

// ActionKindFor returns the auto-action kind an event can trigger
func ActionKindFor(ev events.DomainEvent) (ActionKind, bool) {
	switch ev.Kind {
	case events.KindExpiring:
		return ActionRenew, true
	case events.KindListed:
		if ev.SaleType == "auction" {
			return ActionBid, true
		}
		return ActionBuy, true
	case events.KindPriceChanged:
		if ev.SaleType == "auction" {
			return ActionBid, true
		}
	}
	return "", false
}

// Alert evaluates an alert rule's conditions against an event
// wallet is the rule owner's bound wallet, consulted for transfer rules
func Alert(kind AlertKind, c AlertConditions, wallet string, ev events.DomainEvent) bool {
	switch kind {
	case AlertExpiry:
		if ev.Kind != events.KindExpiring {
			return false
		}
		if c.DaysThreshold > 0 && ev.DaysUntilExpiry > c.DaysThreshold {
			return false
		}
		return ev.Urgency >= c.MinUrgency

	case AlertSale:
		if ev.Kind != events.KindListed && ev.Kind != events.KindSold {
			return false
		}
		return priceInBounds(ev.Price, c.MinPrice, c.MaxPrice) && saleTypeAllowed(ev.SaleType, c.SaleTypes)

	case AlertTransfer:
		if ev.Kind != events.KindTransferred || wallet == "" {
			return false
		}
		return strings.EqualFold(ev.From, wallet) || strings.EqualFold(ev.To, wallet)

	case AlertPrice:
		if ev.Kind != events.KindPriceChanged {
			return false
		}
		if !priceInBounds(ev.Price, c.MinPrice, c.MaxPrice) {
			return false
		}
		switch c.Direction {
		case "up":
			return ev.PrevPrice == 0 || ev.Price > ev.PrevPrice
		case "down":
			return ev.PrevPrice != 0 && ev.Price < ev.PrevPrice
		}
		return true

	case AlertAuction:
		if ev.SaleType != "auction" {
			return false
		}
		if ev.Kind != events.KindListed && ev.Kind != events.KindPriceChanged {
			return false
		}
		return priceInBounds(ev.Price, c.MinPrice, c.MaxPrice)
	}
	return false
}

// Action evaluates an auto-action rule's conditions against an event
func Action(kind ActionKind, c ActionConditions, ev events.DomainEvent, warn WarnFunc) bool {
	if !DomainScoped(ev.Domain, c.Domains, c.DomainPatterns, warn) {
		return false
	}
	switch kind {
	case ActionRenew:
		if ev.Kind != events.KindExpiring {
			return false
		}
		return c.DaysBeforeExpiry == 0 || ev.DaysUntilExpiry <= c.DaysBeforeExpiry

	case ActionBuy:
		if ev.Kind != events.KindListed || ev.SaleType == "auction" {
			return false
		}
		if sellerExcluded(ev.Seller, c.ExcludeSellers) {
			return false
		}
		return c.MaxPrice == nil || ev.Price <= *c.MaxPrice

	case ActionBid:
		if ev.SaleType != "auction" {
			return false
		}
		if ev.Kind != events.KindListed && ev.Kind != events.KindPriceChanged {
			return false
		}
		if sellerExcluded(ev.Seller, c.ExcludeSellers) {
			return false
		}
		return c.MaxPrice == nil || ev.Price <= *c.MaxPrice
	}
	return false
}

func priceInBounds(price int64, min, max *int64) bool {
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}

func saleTypeAllowed(st string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if strings.EqualFold(a, st) {
			return true
		}
	}
	return false
}

func sellerExcluded(seller string, excluded []string) bool {
	for _, s := range excluded {
		if strings.EqualFold(s, seller) {
			return true
		}
	}
	return false
}
