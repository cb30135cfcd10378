// Package service implements the alert dispatcher
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"warden/internal/core/bus"
	"warden/internal/core/dedup"
	"warden/internal/core/events"
	"warden/internal/core/match"
	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
	accounts "warden/internal/services/accounts/domain"
	"warden/internal/services/alerts/domain"
	rules "warden/internal/services/rules/domain"
)

// Config tunes dispatcher behavior
type Config struct {
	DedupCapacity  int
	DigestPerOwner int
}

// Deps are the collaborators the dispatcher consumes
type Deps struct {
	Log          logger.Logger
	Rules        rules.ReaderPort
	Counters     rules.WriterPort
	Entitlements accounts.EntitlementPort
	Notifier     domain.NotifierPort
	Deliveries   domain.DeliveryLogPort
	Bus          *bus.Bus
}

// Dispatcher matches events against alert rules and hands notifications
// to the notifier sink; it owns its own dedup window and digest buffer
type Dispatcher struct {
	log        logger.Logger
	rules      rules.ReaderPort
	counters   rules.WriterPort
	ents       accounts.EntitlementPort
	notifier   domain.NotifierPort
	deliveries domain.DeliveryLogPort
	bus        *bus.Bus

	window  *dedup.Window
	digests *DigestBuffer
}

// New constructs a Dispatcher
func New(d Deps, cfg Config) *Dispatcher {
	log := d.Log.With().Str("component", "alerts").Logger()
	return &Dispatcher{
		log:        log,
		rules:      d.Rules,
		counters:   d.Counters,
		ents:       d.Entitlements,
		notifier:   d.Notifier,
		deliveries: d.Deliveries,
		bus:        d.Bus,
		window:     dedup.NewWindow(cfg.DedupCapacity),
		digests:    NewDigestBuffer(cfg.DigestPerOwner, log),
	}
}

// ProcessEvent implements domain.DispatcherPort.
// A dedup hit returns without side effects. The key is added to the window
// only after the rule store answered: store unavailability drops the event
// for alerting without poisoning the window, so a later redelivery can land
func (d *Dispatcher) ProcessEvent(ctx context.Context, ev events.DomainEvent) error {
	key := ev.DedupKey()
	if d.window.Contains(key) {
		return nil
	}

	for _, kind := range match.AlertKindsFor(ev) {
		if err := d.processKind(ctx, kind, ev); err != nil {
			return err
		}
	}

	d.window.Add(key)
	return nil
}

func (d *Dispatcher) processKind(ctx context.Context, kind match.AlertKind, ev events.DomainEvent) error {
	exact, err := d.rules.FindAlertRulesByDomain(ctx, ev.Domain, kind)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "alert rules by domain for %s", ev.Domain)
	}
	patterned, err := d.rules.FindAlertRulesByPattern(ctx, kind)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "alert rules by pattern for kind %s", kind)
	}

	for _, r := range exact {
		d.consider(ctx, kind, r, ev)
	}
	for _, r := range patterned {
		ok, patErr := match.Pattern(r.DomainPattern, ev.Domain)
		if patErr != nil {
			d.log.Warn().
				Str("rule_id", r.ID).
				Str("pattern", r.DomainPattern).
				Err(patErr).
				Msg("malformed domain pattern, rule skipped")
			continue
		}
		if ok {
			d.consider(ctx, kind, r, ev)
		}
	}
	return nil
}

// consider evaluates one rule's conditions and dispatches on a match
// per-rule failures are isolated: they are logged and never abort the event
func (d *Dispatcher) consider(ctx context.Context, kind match.AlertKind, r rules.AlertRule, ev events.DomainEvent) {
	wallet := ""
	if kind == match.AlertTransfer {
		w, err := d.ents.GetWallet(ctx, r.OwnerID)
		if err != nil {
			d.log.Warn().Str("rule_id", r.ID).Err(err).Msg("wallet lookup failed, rule skipped")
			return
		}
		wallet = w
	}
	if !match.Alert(kind, r.Conditions, wallet, ev) {
		return
	}
	d.dispatch(ctx, kind, r, ev)
}

func (d *Dispatcher) dispatch(ctx context.Context, kind match.AlertKind, r rules.AlertRule, ev events.DomainEvent) {
	tier, err := d.ents.GetTier(ctx, r.OwnerID)
	if err != nil {
		d.log.Warn().Str("rule_id", r.ID).Err(err).Msg("tier lookup failed, rule skipped")
		return
	}

	msg, actions := Render(ev)

	// frequency gate: free tier gets sub-critical alerts folded into the
	// daily digest instead of a real-time push
	if tier == accounts.TierFree && ev.Urgency < events.UrgencyCritical {
		d.digests.Add(r.OwnerID, DigestEntry{Platform: r.Platform, Line: msg, At: ev.At})
		return
	}

	rec := domain.DeliveryRecord{
		RuleID:   r.ID,
		OwnerID:  r.OwnerID,
		Domain:   ev.Domain,
		Kind:     string(kind),
		Platform: r.Platform,
		Message:  msg,
		At:       time.Now().UTC(),
	}

	n := domain.Notification{
		OwnerID:          r.OwnerID,
		Platform:         r.Platform,
		Message:          msg,
		SuggestedActions: actions,
	}
	if err := d.notifier.Send(ctx, n); err != nil {
		d.log.Warn().
			Str("rule_id", r.ID).
			Str("owner_id", r.OwnerID).
			Err(err).
			Msg("notifier hand-off failed")
		rec.Status = domain.DeliveryFailed
		d.appendDelivery(ctx, rec)
		return
	}

	if err := d.counters.IncrementAlertTrigger(ctx, r.ID); err != nil {
		d.log.Warn().Str("rule_id", r.ID).Err(err).Msg("trigger count update failed")
	}
	rec.Status = domain.DeliverySent
	d.appendDelivery(ctx, rec)
	d.bus.Publish(bus.TopicAlert, n)
}

func (d *Dispatcher) appendDelivery(ctx context.Context, rec domain.DeliveryRecord) {
	if err := d.deliveries.Append(ctx, rec); err != nil {
		d.log.Warn().Str("rule_id", rec.RuleID).Err(err).Msg("delivery log append failed")
	}
}

// SendDigests implements domain.DigestPort: it drains the buffer and sends
// one summary notification per owner and platform
func (d *Dispatcher) SendDigests(ctx context.Context) error {
	drained := d.digests.Drain()
	for ownerID, entries := range drained {
		for platform, lines := range groupByPlatform(entries) {
			n := domain.Notification{
				OwnerID:  ownerID,
				Platform: platform,
				Message:  digestMessage(lines),
			}
			if err := d.notifier.Send(ctx, n); err != nil {
				d.log.Warn().
					Str("owner_id", ownerID).
					Str("platform", platform).
					Err(err).
					Msg("digest hand-off failed")
				continue
			}
			d.appendDelivery(ctx, domain.DeliveryRecord{
				OwnerID:  ownerID,
				Kind:     "digest",
				Platform: platform,
				Status:   domain.DeliverySent,
				Message:  n.Message,
				At:       time.Now().UTC(),
			})
		}
	}
	return nil
}

// DigestOwners reports how many owners currently have buffered entries
func (d *Dispatcher) DigestOwners() int { return d.digests.Len() }

func groupByPlatform(entries []DigestEntry) map[string][]string {
	out := make(map[string][]string)
	for _, e := range entries {
		out[e.Platform] = append(out[e.Platform], e.Line)
	}
	return out
}

func digestMessage(lines []string) string {
	sort.Strings(lines)
	return printer.Sprintf("daily digest: %d update(s)\n", len(lines)) + strings.Join(lines, "\n")
}
