// warden-sweep runs a one-shot expiry sweep (and optionally the daily
// digest drain) against the rule store, outside the resident engine
package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"warden/internal/modkit"
	"warden/internal/modkit/module"
	"warden/internal/platform/config"
	"warden/internal/platform/logger"
	"warden/internal/platform/store"

	"warden/internal/adapters/chainrpc"
	"warden/internal/adapters/notify"
	"warden/internal/core/bus"

	accountsdom "warden/internal/services/accounts/domain"
	accountsmod "warden/internal/services/accounts/module"
	alertsdom "warden/internal/services/alerts/domain"
	alertsmod "warden/internal/services/alerts/module"
	"warden/internal/services/ledger"
	rulesdom "warden/internal/services/rules/domain"
	rulesmod "warden/internal/services/rules/module"
	schedsvc "warden/internal/services/scheduler/service"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rpcCfg := root.Prefix("SERVICE_CHAINRPC_")
	notifyCfg := root.Prefix("NOTIFY_")
	l := logger.Get()

	digest := flag.Bool("digest", false, "also drain buffered digests after the sweep")
	flag.Parse()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		AppName: "warden",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
		},
		CH: store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
			Role:    "sweep",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG, CH: st.CH}

	rpc := chainrpc.New(chainrpc.Options{
		BaseURL: rpcCfg.MustString("URL"),
		Timeout: rpcCfg.MayDuration("TIMEOUT", 15*time.Second),
	})
	notifier := notify.New(notify.Config{
		Endpoints: notifyEndpoints(notifyCfg),
		Timeout:   notifyCfg.MayDuration("TIMEOUT", 10*time.Second),
	}, *l)

	am := accountsmod.New(deps)
	aPorts := module.MustPortsOf[accountsdom.Ports](am)

	rm := rulesmod.New(deps, aPorts.Entitlement)
	rPorts := module.MustPortsOf[rulesdom.Ports](rm)

	alm := alertsmod.New(deps, alertsmod.Collaborators{
		Rules:        rPorts.Reader,
		Counters:     rPorts.Writer,
		Entitlements: aPorts.Entitlement,
		Notifier:     notifier,
		Bus:          bus.New(*l),
	})
	alPorts := module.MustPortsOf[alertsdom.Ports](alm)

	sched := schedsvc.New(schedsvc.Deps{
		Log:        *l,
		Rules:      rPorts.Reader,
		Chain:      rpc,
		Dispatcher: alPorts.Dispatcher,
		Digests:    alPorts.Digests,
		Ledger:     ledger.New(),
		Locks:      noLocks{},
	}, schedsvc.Config{})

	if err := sched.SweepExpiry(ctx); err != nil {
		l.Fatal().Err(err).Msg("expiry sweep failed")
	}
	if *digest {
		if err := alPorts.Digests.SendDigests(ctx); err != nil {
			l.Fatal().Err(err).Msg("digest drain failed")
		}
	}
	l.Info().Msg("sweep complete")
}

// noLocks satisfies the scheduler's lock janitor port; the one-shot sweep
// has no resident engine to clean up after
type noLocks struct{}

func (noLocks) CleanupStaleLocks(time.Duration) []string { return nil }

// notifyEndpoints reads NOTIFY_ENDPOINTS as "platform=url,platform=url"
func notifyEndpoints(cfg config.Conf) map[string]string {
	out := make(map[string]string)
	for _, pair := range cfg.MayCSV("ENDPOINTS", nil) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
