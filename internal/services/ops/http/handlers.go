// Package http provides the ops endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"warden/internal/core/version"
	phttp "warden/internal/platform/net/http"
)

// Pinger is satisfied by store adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Counters expose engine gauges on the status endpoint
type Counters struct {
	Locks        func() int
	DigestOwners func() int
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Counters    Counters
}

type handlers struct {
	deps Deps
}

// Register mounts the ops routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	phttp.GetJSON(r, "/healthz", h.health)
	phttp.GetJSON(r, "/readyz", h.ready)
	phttp.GetJSON(r, "/status", h.status)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// StatusResponse reports build info and engine gauges
type StatusResponse struct {
	Build         version.BuildInfo `json:"build"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	InFlightLocks int               `json:"in_flight_locks"`
	DigestOwners  int               `json:"digest_owners"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	checks := []ReadyCheck{
		check("pg", h.deps.PG),
		check("ch", h.deps.CH),
	}
	status := "ok"
	for _, c := range checks {
		if c.Status == "fail" {
			status = "degraded"
		}
	}
	return ReadyResponse{
		Status: status,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) status(_ *http.Request) (any, error) {
	out := StatusResponse{
		Build:         version.Info(h.deps.ServiceName),
		UptimeSeconds: int64(time.Since(h.deps.StartedAt) / time.Second),
	}
	if h.deps.Counters.Locks != nil {
		out.InFlightLocks = h.deps.Counters.Locks()
	}
	if h.deps.Counters.DigestOwners != nil {
		out.DigestOwners = h.deps.Counters.DigestOwners()
	}
	return out, nil
}
