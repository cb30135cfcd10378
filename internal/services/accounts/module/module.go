// Package module implements the accounts service module
package module

import (
	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	"warden/internal/services/accounts/domain"
	"warden/internal/services/accounts/repo"
)

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports domain.Ports
}

// New constructs a new accounts module
func New(deps modkit.Deps) *Module {
	storage := repo.NewPG().Bind(deps.PG)

	m := &Module{deps: deps}
	m.ports = domain.Ports{
		Entitlement: storage,
		Admin:       storage,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "accounts" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
