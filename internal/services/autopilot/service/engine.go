// Package service implements the auto-action engine
package service

import (
	"context"
	"strings"
	"time"

	"warden/internal/core/bus"
	"warden/internal/core/dedup"
	"warden/internal/core/events"
	"warden/internal/core/match"
	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
	accounts "warden/internal/services/accounts/domain"
	"warden/internal/services/autopilot/domain"
	"warden/internal/services/ledger"
	rules "warden/internal/services/rules/domain"
)

// defaultSubmitTimeout bounds the synchronous confirmation wait so a stuck
// submission cannot starve its rule+domain pair
const defaultSubmitTimeout = 30 * time.Second

// defaultBidStep applies when an auction rule sets no increment
const defaultBidStep = 1

// Config tunes engine behavior
type Config struct {
	// RenewAmount is the fixed renewal price in the chain's smallest unit
	RenewAmount   int64
	SubmitTimeout time.Duration
	DedupCapacity int
}

// Deps are the collaborators the engine consumes
type Deps struct {
	Log          logger.Logger
	Rules        rules.ReaderPort
	Writer       rules.WriterPort
	Entitlements accounts.EntitlementPort
	Ledger       *ledger.Ledger
	Submitter    domain.SubmitPort
	Bus          *bus.Bus
}

// Engine matches events against auto-action rules and executes them
// it owns its own dedup window, independent of the alert dispatcher's
type Engine struct {
	log    logger.Logger
	cfg    Config
	rules  rules.ReaderPort
	writer rules.WriterPort
	ents   accounts.EntitlementPort
	ledger *ledger.Ledger
	submit domain.SubmitPort
	bus    *bus.Bus

	window *dedup.Window
	locks  *lockTable
}

// New constructs an Engine
func New(d Deps, cfg Config) *Engine {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	return &Engine{
		log:    d.Log.With().Str("component", "autopilot").Logger(),
		cfg:    cfg,
		rules:  d.Rules,
		writer: d.Writer,
		ents:   d.Entitlements,
		ledger: d.Ledger,
		submit: d.Submitter,
		bus:    d.Bus,
		window: dedup.NewWindow(cfg.DedupCapacity),
		locks:  newLockTable(),
	}
}

// ProcessEvent implements domain.EnginePort
// the dedup key is added only after the rule store answered, so transient
// store outages do not permanently swallow an event
func (e *Engine) ProcessEvent(ctx context.Context, ev events.DomainEvent) error {
	key := ev.DedupKey()
	if e.window.Contains(key) {
		return nil
	}

	kind, ok := match.ActionKindFor(ev)
	if !ok {
		e.window.Add(key)
		return nil
	}

	candidates, err := e.rules.FindAutoActionRules(ctx, kind)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "auto action rules for kind %s", kind)
	}

	warn := func(pattern string, err error) {
		e.log.Warn().Str("pattern", pattern).Err(err).Msg("malformed domain pattern, rule skipped")
	}
	for _, r := range candidates {
		if !match.Action(kind, r.Conditions, ev, warn) {
			continue
		}
		e.execute(ctx, kind, r, ev)
	}

	e.window.Add(key)
	return nil
}

// execute runs one rule against one event under the in-flight lock
// every terminal path, aborts included, releases the lock
func (e *Engine) execute(ctx context.Context, kind match.ActionKind, r rules.AutoActionRule, ev events.DomainEvent) {
	lockKey := r.ID + ":" + ev.Domain
	now := time.Now().UTC()
	if !e.locks.tryLock(lockKey, now) {
		e.log.Debug().Str("lock_key", lockKey).Msg("action already in flight, skipped")
		return
	}
	defer e.locks.unlock(lockKey, now)

	log := e.log.With().
		Str("rule_id", r.ID).
		Str("owner_id", r.OwnerID).
		Str("domain", ev.Domain).
		Logger()

	// entitlement re-validation: auto actions are premium only
	tier, err := e.ents.GetTier(ctx, r.OwnerID)
	if err != nil {
		log.Warn().Err(err).Msg("tier lookup failed, action dropped")
		return
	}
	if tier != accounts.TierPremium {
		e.abort(ctx, log, r, ev, 0, perr.EntitlementLapsedf("tier %s cannot run auto actions", tier))
		return
	}

	// eligibility: renewal requires the rule owner to hold the domain
	if kind == match.ActionRenew && ev.Owner != "" {
		wallet, err := e.ents.GetWallet(ctx, r.OwnerID)
		if err != nil {
			log.Warn().Err(err).Msg("wallet lookup failed, action dropped")
			return
		}
		if !strings.EqualFold(wallet, ev.Owner) {
			e.abort(ctx, log, r, ev, 0, perr.NotEligiblef("owner %s does not hold %s", r.OwnerID, ev.Domain))
			return
		}
	}

	amount, err := e.amountFor(kind, r, ev)
	if err != nil {
		e.abort(ctx, log, r, ev, 0, err)
		return
	}
	if amount > r.MaxAmount {
		e.abort(ctx, log, r, ev, amount,
			perr.NotEligiblef("amount %d exceeds rule max %d", amount, r.MaxAmount))
		return
	}

	month := ledger.MonthOf(now)
	cap, err := e.ents.GetMonthlyCap(ctx, r.OwnerID)
	if err != nil {
		log.Warn().Err(err).Msg("monthly cap lookup failed, action dropped")
		return
	}
	if err := e.ledger.Reserve(r.OwnerID, month, amount, cap); err != nil {
		e.abort(ctx, log, r, ev, amount, err)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, e.cfg.SubmitTimeout)
	defer cancel()
	txHash, err := e.submit.Submit(sctx, domain.SubmitRequest{
		Kind:    kind,
		Domain:  ev.Domain,
		Amount:  amount,
		OwnerID: r.OwnerID,
	})
	if err != nil {
		e.ledger.Release(r.OwnerID, month, amount)
		e.abort(ctx, log, r, ev, amount, perr.Wrap(err, perr.ErrorCodeUnavailable, "submission failed"))
		return
	}

	if err := e.writer.IncrementActionExecution(ctx, r.ID); err != nil {
		log.Warn().Err(err).Msg("execution count update failed")
	}
	rec := rules.ActionRecord{
		RuleID:    r.ID,
		OwnerID:   r.OwnerID,
		Domain:    ev.Domain,
		Amount:    amount,
		TxHash:    &txHash,
		Status:    rules.ActionSuccess,
		CreatedAt: time.Now().UTC(),
	}
	e.appendRecord(ctx, log, rec)
	e.bus.Publish(bus.TopicActionExecuted, rec)
	log.Info().Str("tx_hash", txHash).Int64("amount", amount).Msg("auto action executed")
}

// amountFor computes the action amount per kind
func (e *Engine) amountFor(kind match.ActionKind, r rules.AutoActionRule, ev events.DomainEvent) (int64, error) {
	switch kind {
	case match.ActionRenew:
		return e.cfg.RenewAmount, nil
	case match.ActionBuy:
		return ev.Price, nil
	case match.ActionBid:
		if r.Conditions.StopPrice > 0 && ev.Price >= r.Conditions.StopPrice {
			return 0, perr.StopLimitf("current bid %d at or above stop price %d", ev.Price, r.Conditions.StopPrice)
		}
		step := r.Conditions.BidStep
		if step <= 0 {
			step = defaultBidStep
		}
		return ev.Price + step, nil
	}
	return 0, perr.NotEligiblef("no amount for action kind %s", kind)
}

// abort logs a failed execution record for a business-rule abort or a
// submission failure; these are expected outcomes, not system errors
func (e *Engine) abort(
	ctx context.Context,
	log logger.Logger,
	r rules.AutoActionRule,
	ev events.DomainEvent,
	amount int64,
	cause error,
) {
	detail := cause.Error()
	rec := rules.ActionRecord{
		RuleID:    r.ID,
		OwnerID:   r.OwnerID,
		Domain:    ev.Domain,
		Amount:    amount,
		Status:    rules.ActionFailed,
		Error:     &detail,
		CreatedAt: time.Now().UTC(),
	}
	e.appendRecord(ctx, log, rec)
	e.bus.Publish(bus.TopicActionFailed, rec)
	log.Info().Err(cause).Msg("auto action aborted")
}

func (e *Engine) appendRecord(ctx context.Context, log logger.Logger, rec rules.ActionRecord) {
	if err := e.writer.AppendActionLog(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("action log append failed")
	}
}

// CleanupStaleLocks implements domain.LockJanitorPort
func (e *Engine) CleanupStaleLocks(maxAge time.Duration) []string {
	return e.locks.cleanupStale(maxAge, time.Now().UTC())
}

// LockCount reports held in-flight locks for the ops surface
func (e *Engine) LockCount() int { return e.locks.count() }
