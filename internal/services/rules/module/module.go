// Package module implements the rules service module
package module

import (
	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	"warden/internal/services/rules/domain"
	"warden/internal/services/rules/repo"
	"warden/internal/services/rules/service"
)

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports domain.Ports
}

// New constructs a new rules module
// wallets resolves owner wallet bindings at rule write time
func New(deps modkit.Deps, wallets service.WalletPort) *Module {
	storage := repo.NewPG().Bind(deps.PG)

	m := &Module{deps: deps}
	m.ports = domain.Ports{
		Reader:    storage,
		Writer:    storage,
		Admin:     storage,
		Validator: service.NewValidator(wallets),
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "rules" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
