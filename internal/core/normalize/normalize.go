// Package normalize converts raw chain callbacks into canonical DomainEvents
// Pipeline
// 1 map the callback name to an event kind
// 2 normalize the domain name (NFKC, case fold, strip format chars, width fold)
// 3 parse kind-specific arguments, rejecting missing or non-numeric fields
// 4 derive the urgency tier for expiry events
package normalize

import (
	"strconv"
	"time"

	"warden/internal/core/events"
	perr "warden/internal/platform/errors"
)

// RawEvent is a chain-client callback before normalization
type RawEvent struct {
	Name   string            `json:"name"`
	Args   map[string]string `json:"args"`
	Block  uint64            `json:"block"`
	TxHash string            `json:"tx_hash"`
	At     time.Time         `json:"at"`
}

// kindByName maps contract callback names to canonical kinds
var kindByName = map[string]events.Kind{
	"NameExpiring":     events.KindExpiring,
	"NameListed":       events.KindListed,
	"NameSold":         events.KindSold,
	"PriceChanged":     events.KindPriceChanged,
	"NameTransferred":  events.KindTransferred,
	"AutoActionResult": events.KindAutoActionResult,
}

// Event normalizes raw into a DomainEvent
// returns a malformed-event error when required fields are absent or non-numeric
func Event(raw RawEvent) (events.DomainEvent, error) {
	var zero events.DomainEvent

	kind, ok := kindByName[raw.Name]
	if !ok {
		return zero, perr.MalformedEventf("unknown callback name %q", raw.Name)
	}
	if raw.TxHash == "" {
		return zero, perr.MalformedEventf("%s: missing transaction hash", raw.Name)
	}
	domain := Domain(raw.Args["name"])
	if domain == "" {
		return zero, perr.MalformedEventf("%s: missing domain name", raw.Name)
	}

	at := raw.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	ev := events.DomainEvent{
		Kind:   kind,
		Domain: domain,
		At:     at,
		Chain:  events.ChainRef{Block: raw.Block, TxHash: raw.TxHash},
	}

	switch kind {
	case events.KindExpiring:
		days, err := intArg(raw, "daysUntilExpiry")
		if err != nil {
			return zero, err
		}
		ev.DaysUntilExpiry = days
		ev.Urgency = Urgency(days)
		ev.Owner = raw.Args["owner"]

	case events.KindListed:
		price, err := amountArg(raw, "price")
		if err != nil {
			return zero, err
		}
		ev.Price = price
		ev.Seller = raw.Args["seller"]
		ev.SaleType = saleType(raw.Args["saleType"])

	case events.KindSold:
		price, err := amountArg(raw, "price")
		if err != nil {
			return zero, err
		}
		ev.Price = price
		ev.Seller = raw.Args["seller"]
		ev.Buyer = raw.Args["buyer"]
		ev.SaleType = saleType(raw.Args["saleType"])

	case events.KindPriceChanged:
		price, err := amountArg(raw, "price")
		if err != nil {
			return zero, err
		}
		ev.Price = price
		if s := raw.Args["prevPrice"]; s != "" {
			prev, perr2 := strconv.ParseInt(s, 10, 64)
			if perr2 != nil {
				return zero, perr.MalformedEventf("%s: non-numeric prevPrice %q", raw.Name, s)
			}
			ev.PrevPrice = prev
		}
		ev.SaleType = saleType(raw.Args["saleType"])

	case events.KindTransferred:
		from, to := raw.Args["from"], raw.Args["to"]
		if from == "" || to == "" {
			return zero, perr.MalformedEventf("%s: missing transfer parties", raw.Name)
		}
		ev.From = from
		ev.To = to

	case events.KindAutoActionResult:
		// engine-emitted results only need the optional amount validated
		if s := raw.Args["amount"]; s != "" {
			amt, aerr := strconv.ParseInt(s, 10, 64)
			if aerr != nil {
				return zero, perr.MalformedEventf("%s: non-numeric amount %q", raw.Name, s)
			}
			ev.Price = amt
		}
		ev.Owner = raw.Args["owner"]
	}

	return ev, nil
}

// Urgency derives the expiry urgency tier from days remaining
func Urgency(daysUntilExpiry int) events.Urgency {
	switch {
	case daysUntilExpiry <= 1:
		return events.UrgencyCritical
	case daysUntilExpiry <= 3:
		return events.UrgencyHigh
	case daysUntilExpiry <= 7:
		return events.UrgencyMedium
	default:
		return events.UrgencyLow
	}
}

func intArg(raw RawEvent, key string) (int, error) {
	s, ok := raw.Args[key]
	if !ok || s == "" {
		return 0, perr.MalformedEventf("%s: missing %s", raw.Name, key)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, perr.MalformedEventf("%s: non-numeric %s %q", raw.Name, key, s)
	}
	return n, nil
}

func amountArg(raw RawEvent, key string) (int64, error) {
	s, ok := raw.Args[key]
	if !ok || s == "" {
		return 0, perr.MalformedEventf("%s: missing %s", raw.Name, key)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, perr.MalformedEventf("%s: invalid %s %q", raw.Name, key, s)
	}
	return n, nil
}

func saleType(s string) string {
	if s == "" {
		return "fixed"
	}
	return s
}
