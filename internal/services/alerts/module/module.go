// Package module implements the alerts service module
package module

import (
	"warden/internal/core/bus"
	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	accounts "warden/internal/services/accounts/domain"
	"warden/internal/services/alerts/domain"
	"warden/internal/services/alerts/repo"
	"warden/internal/services/alerts/service"
	rules "warden/internal/services/rules/domain"
)

// Collaborators are the cross-module ports the alerts module consumes
type Collaborators struct {
	Rules        rules.ReaderPort
	Counters     rules.WriterPort
	Entitlements accounts.EntitlementPort
	Notifier     domain.NotifierPort
	Bus          *bus.Bus
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	svc   *service.Dispatcher
	ports domain.Ports
}

// New constructs a new alerts module
func New(deps modkit.Deps, in Collaborators) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(service.Deps{
		Log:          deps.Log,
		Rules:        in.Rules,
		Counters:     in.Counters,
		Entitlements: in.Entitlements,
		Notifier:     in.Notifier,
		Deliveries:   repo.NewCH(deps.CH),
		Bus:          in.Bus,
	}, service.Config{
		DedupCapacity:  opts.DedupCapacity,
		DigestPerOwner: opts.DigestPerOwner,
	})

	m := &Module{deps: deps, svc: svc}
	m.ports = domain.Ports{
		Dispatcher: svc,
		Digests:    svc,
	}
	return m
}

// Dispatcher exposes the concrete dispatcher for the ops status surface
func (m *Module) Dispatcher() *service.Dispatcher { return m.svc }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "alerts" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
