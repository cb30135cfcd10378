// Package module implements the scheduler service module
package module

import (
	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	alerts "warden/internal/services/alerts/domain"
	autopilot "warden/internal/services/autopilot/domain"
	"warden/internal/services/ledger"
	rules "warden/internal/services/rules/domain"
	"warden/internal/services/scheduler/service"
)

// Collaborators are the cross-module ports the scheduler drives
type Collaborators struct {
	Rules      rules.ReaderPort
	Chain      service.DomainInfoPort
	Dispatcher alerts.DispatcherPort
	Digests    alerts.DigestPort
	Ledger     *ledger.Ledger
	Locks      autopilot.LockJanitorPort
}

// Module implements modkit.Module
type Module struct {
	deps modkit.Deps
	svc  *service.Scheduler
}

// New constructs a new scheduler module
func New(deps modkit.Deps, in Collaborators) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(service.Deps{
		Log:        deps.Log,
		Rules:      in.Rules,
		Chain:      in.Chain,
		Dispatcher: in.Dispatcher,
		Digests:    in.Digests,
		Ledger:     in.Ledger,
		Locks:      in.Locks,
	}, service.Config{
		SweepEvery:     opts.SweepEvery,
		LockSweepEvery: opts.LockSweepEvery,
		StaleLockAge:   opts.StaleLockAge,
		DigestHourUTC:  opts.DigestHourUTC,
	})

	return &Module{deps: deps, svc: svc}
}

// Scheduler exposes the running surface for the engine binary
func (m *Module) Scheduler() *service.Scheduler { return m.svc }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "scheduler" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.svc }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
