// Package service implements the periodic job scheduler
package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"warden/internal/core/events"
	"warden/internal/core/normalize"
	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
	alerts "warden/internal/services/alerts/domain"
	autopilot "warden/internal/services/autopilot/domain"
	"warden/internal/services/ledger"
	rules "warden/internal/services/rules/domain"
)

// DomainInfoPort resolves current on-chain expiry for a domain
type DomainInfoPort interface {
	DomainInfo(ctx context.Context, domain string) (expiry time.Time, err error)
}

// Config tunes job cadence
type Config struct {
	SweepEvery     time.Duration
	LockSweepEvery time.Duration
	StaleLockAge   time.Duration
	DigestHourUTC  int
	// CalendarTick drives the day/hour-gated jobs
	CalendarTick time.Duration
}

// Deps are the collaborators the scheduler drives
type Deps struct {
	Log        logger.Logger
	Rules      rules.ReaderPort
	Chain      DomainInfoPort
	Dispatcher alerts.DispatcherPort
	Digests    alerts.DigestPort
	Ledger     *ledger.Ledger
	Locks      autopilot.LockJanitorPort
}

// job carries the overlap-skip flag: a tick that lands while the previous
// run is still going is dropped, not queued
type job struct {
	name     string
	inflight atomic.Bool
}

// Scheduler runs the periodic maintenance jobs on independent timers
type Scheduler struct {
	log  logger.Logger
	cfg  Config
	deps Deps

	sweep  job
	reset  job
	locks  job
	digest job

	lastResetMonth string
	lastDigestDay  string
}

// New constructs a Scheduler
func New(d Deps, cfg Config) *Scheduler {
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = time.Hour
	}
	if cfg.LockSweepEvery <= 0 {
		cfg.LockSweepEvery = time.Hour
	}
	if cfg.StaleLockAge <= 0 {
		cfg.StaleLockAge = time.Hour
	}
	if cfg.CalendarTick <= 0 {
		cfg.CalendarTick = time.Minute
	}
	return &Scheduler{
		log:    d.Log.With().Str("component", "scheduler").Logger(),
		cfg:    cfg,
		deps:   d,
		sweep:  job{name: "expiry_sweep"},
		reset:  job{name: "ledger_reset"},
		locks:  job{name: "lock_cleanup"},
		digest: job{name: "digest"},
	}
}

// Run drives all jobs until ctx is canceled
func (s *Scheduler) Run(ctx context.Context) error {
	sweepT := time.NewTicker(s.cfg.SweepEvery)
	defer sweepT.Stop()
	lockT := time.NewTicker(s.cfg.LockSweepEvery)
	defer lockT.Stop()
	calT := time.NewTicker(s.cfg.CalendarTick)
	defer calT.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweepT.C:
			s.runJob(ctx, &s.sweep, s.SweepExpiry)
		case <-lockT.C:
			s.runJob(ctx, &s.locks, s.CleanupLocks)
		case <-calT.C:
			now := time.Now().UTC()
			s.runJob(ctx, &s.reset, func(ctx context.Context) error {
				return s.ResetLedger(ctx, now)
			})
			s.runJob(ctx, &s.digest, func(ctx context.Context) error {
				return s.RunDigest(ctx, now)
			})
		}
	}
}

// runJob executes fn unless a previous run of the same job is still in flight
func (s *Scheduler) runJob(ctx context.Context, j *job, fn func(context.Context) error) {
	if !j.inflight.CompareAndSwap(false, true) {
		s.log.Warn().Str("job", j.name).Msg("previous run still in flight, tick skipped")
		return
	}
	defer j.inflight.Store(false)

	if err := fn(ctx); err != nil {
		s.log.Error().Str("job", j.name).Err(err).Msg("job failed")
	}
}

// SweepExpiry re-checks expiry for every concretely-bound expiry rule and
// pushes synthetic expiring events through the alert dispatcher.
// The sweep tx hash is date-scoped so one day's sweep dedups against itself
func (s *Scheduler) SweepExpiry(ctx context.Context) error {
	list, err := s.deps.Rules.FindConcreteExpiryRules(ctx)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "concrete expiry rules")
	}

	now := time.Now().UTC()
	seen := make(map[string]bool, len(list))
	for _, r := range list {
		if seen[r.Domain] {
			continue
		}
		seen[r.Domain] = true

		expiry, err := s.deps.Chain.DomainInfo(ctx, r.Domain)
		if err != nil {
			s.log.Warn().Str("domain", r.Domain).Err(err).Msg("domain info lookup failed")
			continue
		}
		days := int(expiry.Sub(now).Hours() / 24)
		if days < 0 {
			continue
		}

		ev := events.DomainEvent{
			Kind:            events.KindExpiring,
			Domain:          r.Domain,
			At:              now,
			Chain:           events.ChainRef{TxHash: sweepTxHash(r.Domain, now)},
			DaysUntilExpiry: days,
			Urgency:         normalize.Urgency(days),
		}
		if err := s.deps.Dispatcher.ProcessEvent(ctx, ev); err != nil {
			s.log.Warn().Str("domain", r.Domain).Err(err).Msg("sweep dispatch failed")
		}
	}
	return nil
}

func sweepTxHash(domain string, at time.Time) string {
	return fmt.Sprintf("sweep-%s-%s", domain, at.Format("2006-01-02"))
}

// ResetLedger clears prior months on the first day of each month (UTC)
// ResetBefore is idempotent, the month guard just avoids log noise
func (s *Scheduler) ResetLedger(_ context.Context, now time.Time) error {
	month := ledger.MonthOf(now)
	if now.Day() != 1 || s.lastResetMonth == month {
		return nil
	}
	s.lastResetMonth = month

	n := s.deps.Ledger.ResetBefore(month)
	s.log.Info().Str("month", month).Int("cleared", n).Msg("ledger reset")
	return nil
}

// CleanupLocks drops in-flight locks older than the stale age
func (s *Scheduler) CleanupLocks(context.Context) error {
	for _, key := range s.deps.Locks.CleanupStaleLocks(s.cfg.StaleLockAge) {
		s.log.Warn().Str("lock_key", key).Msg("stale in-flight lock removed")
	}
	return nil
}

// RunDigest drains buffered sub-critical alerts once per day at the
// configured hour
func (s *Scheduler) RunDigest(ctx context.Context, now time.Time) error {
	day := now.Format("2006-01-02")
	if now.Hour() != s.cfg.DigestHourUTC || s.lastDigestDay == day {
		return nil
	}
	s.lastDigestDay = day
	return s.deps.Digests.SendDigests(ctx)
}
