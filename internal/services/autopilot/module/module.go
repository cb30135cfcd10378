// Package module implements the autopilot service module
package module

import (
	"warden/internal/core/bus"
	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	accounts "warden/internal/services/accounts/domain"
	"warden/internal/services/autopilot/domain"
	"warden/internal/services/autopilot/service"
	"warden/internal/services/ledger"
	rules "warden/internal/services/rules/domain"
)

// Collaborators are the cross-module ports the autopilot module consumes
type Collaborators struct {
	Rules        rules.ReaderPort
	Writer       rules.WriterPort
	Entitlements accounts.EntitlementPort
	Ledger       *ledger.Ledger
	Submitter    domain.SubmitPort
	Bus          *bus.Bus
}

// Module implements modkit.Module
type Module struct {
	deps   modkit.Deps
	engine *service.Engine
	ports  domain.Ports
}

// New constructs a new autopilot module
func New(deps modkit.Deps, in Collaborators) *Module {
	opts := FromConfig(deps.Cfg)

	eng := service.New(service.Deps{
		Log:          deps.Log,
		Rules:        in.Rules,
		Writer:       in.Writer,
		Entitlements: in.Entitlements,
		Ledger:       in.Ledger,
		Submitter:    in.Submitter,
		Bus:          in.Bus,
	}, service.Config{
		RenewAmount:   opts.RenewAmount,
		SubmitTimeout: opts.SubmitTimeout,
		DedupCapacity: opts.DedupCapacity,
	})

	m := &Module{deps: deps, engine: eng}
	m.ports = domain.Ports{
		Engine: eng,
		Locks:  eng,
	}
	return m
}

// Engine exposes the engine for the ops status surface
func (m *Module) Engine() *service.Engine { return m.engine }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "autopilot" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
