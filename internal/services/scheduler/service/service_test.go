package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"warden/internal/core/events"
	"warden/internal/core/match"
	"warden/internal/platform/logger"
	"warden/internal/services/ledger"
	rules "warden/internal/services/rules/domain"
)

type fakeRules struct {
	expiry []rules.AlertRule
}

func (f *fakeRules) FindConcreteExpiryRules(context.Context) ([]rules.AlertRule, error) {
	return f.expiry, nil
}

func (f *fakeRules) FindAlertRulesByDomain(context.Context, string, match.AlertKind) ([]rules.AlertRule, error) {
	return nil, nil
}

func (f *fakeRules) FindAlertRulesByPattern(context.Context, match.AlertKind) ([]rules.AlertRule, error) {
	return nil, nil
}

func (f *fakeRules) FindAutoActionRules(context.Context, match.ActionKind) ([]rules.AutoActionRule, error) {
	return nil, nil
}

type fakeChain struct {
	expiry map[string]time.Time
}

func (f fakeChain) DomainInfo(_ context.Context, dom string) (time.Time, error) {
	return f.expiry[dom], nil
}

type fakeDispatcher struct {
	mu  sync.Mutex
	evs []events.DomainEvent
}

func (f *fakeDispatcher) ProcessEvent(_ context.Context, ev events.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evs = append(f.evs, ev)
	return nil
}

type fakeDigests struct{ sends int }

func (f *fakeDigests) SendDigests(context.Context) error {
	f.sends++
	return nil
}

type fakeLocks struct{ stale []string }

func (f fakeLocks) CleanupStaleLocks(time.Duration) []string { return f.stale }

func newTestScheduler(fr *fakeRules, ch fakeChain, fd *fakeDispatcher, dg *fakeDigests) *Scheduler {
	return New(Deps{
		Log:        *logger.Get(),
		Rules:      fr,
		Chain:      ch,
		Dispatcher: fd,
		Digests:    dg,
		Ledger:     ledger.New(),
		Locks:      fakeLocks{},
	}, Config{DigestHourUTC: 9})
}

func TestSweepExpiry(t *testing.T) {
	now := time.Now().UTC()
	fr := &fakeRules{expiry: []rules.AlertRule{
		{ID: "r1", Domain: "web3.ape", Kind: match.AlertExpiry},
		{ID: "r2", Domain: "web3.ape", Kind: match.AlertExpiry}, // same domain, one lookup
		{ID: "r3", Domain: "gone.ape", Kind: match.AlertExpiry},
	}}
	ch := fakeChain{expiry: map[string]time.Time{
		"web3.ape": now.Add(3*24*time.Hour + time.Hour),
		"gone.ape": now.Add(-24 * time.Hour), // already expired, skipped
	}}
	fd := &fakeDispatcher{}
	s := newTestScheduler(fr, ch, fd, &fakeDigests{})

	if err := s.SweepExpiry(context.Background()); err != nil {
		t.Fatalf("SweepExpiry: %v", err)
	}
	if len(fd.evs) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(fd.evs))
	}
	ev := fd.evs[0]
	if ev.Kind != events.KindExpiring || ev.Domain != "web3.ape" || ev.DaysUntilExpiry != 3 {
		t.Fatalf("event = %+v", ev)
	}
	if !strings.HasPrefix(ev.Chain.TxHash, "sweep-web3.ape-") {
		t.Fatalf("tx hash = %q", ev.Chain.TxHash)
	}
	if ev.Urgency != events.UrgencyHigh {
		t.Fatalf("urgency = %v, want high", ev.Urgency)
	}
}

func TestRunJob_OverlapSkipped(t *testing.T) {
	s := newTestScheduler(&fakeRules{}, fakeChain{}, &fakeDispatcher{}, &fakeDigests{})

	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	var mu sync.Mutex
	slow := func(context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return nil
	}

	go s.runJob(context.Background(), &s.sweep, slow)
	<-started

	// a tick landing mid-run is dropped
	s.runJob(context.Background(), &s.sweep, func(context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	})
	close(release)

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestResetLedger_FirstOfMonthOnly(t *testing.T) {
	fd := &fakeDispatcher{}
	s := newTestScheduler(&fakeRules{}, fakeChain{}, fd, &fakeDigests{})
	led := s.deps.Ledger
	_ = led.Reserve("a", "2026-07", 10, 100)

	mid := time.Date(2026, time.August, 15, 3, 0, 0, 0, time.UTC)
	if err := s.ResetLedger(context.Background(), mid); err != nil {
		t.Fatalf("ResetLedger: %v", err)
	}
	if led.Committed("a", "2026-07") != 10 {
		t.Fatalf("mid-month tick reset the ledger")
	}

	first := time.Date(2026, time.September, 1, 0, 1, 0, 0, time.UTC)
	if err := s.ResetLedger(context.Background(), first); err != nil {
		t.Fatalf("ResetLedger: %v", err)
	}
	if led.Committed("a", "2026-07") != 0 {
		t.Fatalf("prior month survived the monthly reset")
	}
}

func TestRunDigest_HourGate(t *testing.T) {
	dg := &fakeDigests{}
	s := newTestScheduler(&fakeRules{}, fakeChain{}, &fakeDispatcher{}, dg)
	ctx := context.Background()

	off := time.Date(2026, time.August, 20, 8, 0, 0, 0, time.UTC)
	if err := s.RunDigest(ctx, off); err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if dg.sends != 0 {
		t.Fatalf("digest sent outside the configured hour")
	}

	on := time.Date(2026, time.August, 20, 9, 5, 0, 0, time.UTC)
	if err := s.RunDigest(ctx, on); err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if err := s.RunDigest(ctx, on.Add(30*time.Minute)); err != nil {
		t.Fatalf("RunDigest repeat: %v", err)
	}
	if dg.sends != 1 {
		t.Fatalf("sends = %d, want 1 per day", dg.sends)
	}
}
