// Package module wires the ops endpoints into the HTTP server
package module

import (
	"net/http"
	"time"

	"warden/internal/modkit"
	phttp "warden/internal/platform/net/http"
	"warden/internal/platform/net/middleware"
	str "warden/internal/platform/strings"
	opshttp "warden/internal/services/ops/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	subrouter func(phttp.Router) phttp.Router
	register  func(phttp.Router)

	startedAt time.Time
}

// New constructs an ops module with the provided dependencies and options
func New(deps modkit.Deps, counters opshttp.Counters, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("ops"),
	}, opts...)...)

	// ops endpoints always get the platform bundle unless the binary
	// supplies its own stack
	mws := b.Mw
	if len(mws) == 0 {
		mws = middleware.Defaults()
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       mws,
		subrouter: b.Subrouter,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r phttp.Router) {
		opshttp.Register(r, opshttp.Deps{
			ServiceName: "warden-engine",
			StartedAt:   m.startedAt,
			PG:          deps.PG,
			CH:          deps.CH,
			Counters:    counters,
		})
		if external != nil {
			external(r)
		}
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	mount := func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	}
	if m.prefix == "" {
		mount(r)
		return
	}
	r.Route(m.prefix, mount)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "ops") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
