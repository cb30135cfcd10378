package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"warden/internal/modkit"
	"warden/internal/modkit/module"
	"warden/internal/platform/config"
	"warden/internal/platform/logger"
	phttp "warden/internal/platform/net/http"
	"warden/internal/platform/net/middleware"
	"warden/internal/platform/store"

	"warden/internal/adapters/chainfeed"
	"warden/internal/adapters/chainrpc"
	"warden/internal/adapters/notify"
	"warden/internal/core/bus"

	accountsdom "warden/internal/services/accounts/domain"
	accountsmod "warden/internal/services/accounts/module"
	alertsdom "warden/internal/services/alerts/domain"
	alertsmod "warden/internal/services/alerts/module"
	autopilotdom "warden/internal/services/autopilot/domain"
	autopilotmod "warden/internal/services/autopilot/module"
	"warden/internal/services/ledger"
	opshttp "warden/internal/services/ops/http"
	opsmod "warden/internal/services/ops/module"
	rulesdom "warden/internal/services/rules/domain"
	rulesmod "warden/internal/services/rules/module"
	schedmod "warden/internal/services/scheduler/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	kafkaCfg := root.Prefix("SERVICE_KAFKA_")
	rpcCfg := root.Prefix("SERVICE_CHAINRPC_")
	notifyCfg := root.Prefix("NOTIFY_")
	httpCfg := root.Prefix("ENGINE_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "warden",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
			Role:    "engine",
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

	deps := modkit.Deps{
		Log: *l,
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
	}

	b := bus.New(*l)
	led := ledger.New()

	rpc := chainrpc.New(chainrpc.Options{
		BaseURL: rpcCfg.MustString("URL"),
		Timeout: rpcCfg.MayDuration("TIMEOUT", 15*time.Second),
	})
	notifier := notify.New(notify.Config{
		Endpoints: notifyEndpoints(notifyCfg),
		Timeout:   notifyCfg.MayDuration("TIMEOUT", 10*time.Second),
	}, *l)

	// module graph: accounts feeds rules validation and both dispatchers
	am := accountsmod.New(deps)
	aPorts := module.MustPortsOf[accountsdom.Ports](am)

	rm := rulesmod.New(deps, aPorts.Entitlement)
	rPorts := module.MustPortsOf[rulesdom.Ports](rm)

	alm := alertsmod.New(deps, alertsmod.Collaborators{
		Rules:        rPorts.Reader,
		Counters:     rPorts.Writer,
		Entitlements: aPorts.Entitlement,
		Notifier:     notifier,
		Bus:          b,
	})
	alPorts := module.MustPortsOf[alertsdom.Ports](alm)

	apm := autopilotmod.New(deps, autopilotmod.Collaborators{
		Rules:        rPorts.Reader,
		Writer:       rPorts.Writer,
		Entitlements: aPorts.Entitlement,
		Ledger:       led,
		Submitter:    rpc,
		Bus:          b,
	})
	apPorts := module.MustPortsOf[autopilotdom.Ports](apm)

	sm := schedmod.New(deps, schedmod.Collaborators{
		Rules:      rPorts.Reader,
		Chain:      rpc,
		Dispatcher: alPorts.Dispatcher,
		Digests:    alPorts.Digests,
		Ledger:     led,
		Locks:      apPorts.Locks,
	})

	module.Register(am.Name(), am.Ports())
	module.Register(rm.Name(), rm.Ports())
	module.Register(alm.Name(), alm.Ports())
	module.Register(apm.Name(), apm.Ports())

	consumer, err := chainfeed.NewConsumer(chainfeed.ConsumerConfig{
		Brokers: kafkaCfg.MayCSV("BROKERS", []string{"localhost:9092"}),
		Topic:   kafkaCfg.MayString("TOPIC_IN", "chain.events"),
		GroupID: kafkaCfg.MayString("GROUP_ID", "warden-engine"),
	}, *l)
	if err != nil {
		l.Panic().Err(err).Msg("chainfeed consumer init failed")
	}
	defer func() { _ = consumer.Close() }()
	consumer.AddSink("alerts", alPorts.Dispatcher)
	consumer.AddSink("autopilot", apPorts.Engine)

	producer, err := chainfeed.NewProducer(chainfeed.ProducerConfig{
		Brokers: kafkaCfg.MayCSV("BROKERS", []string{"localhost:9092"}),
		Topic:   kafkaCfg.MayString("TOPIC_OUT", "warden.events"),
	}, *l)
	if err != nil {
		l.Panic().Err(err).Msg("chainfeed producer init failed")
	}
	defer func() { _ = producer.Close() }()

	// ops surface on the platform HTTP server (ENGINE_HTTP_ADDR)
	srv := phttp.NewServer(httpCfg)
	om := opsmod.New(deps, opshttp.Counters{
		Locks:        apm.Engine().LockCount,
		DigestOwners: alm.Dispatcher().DigestOwners,
	}, modkit.WithMiddlewares(append(middleware.Defaults(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: httpCfg.MayDuration("SLOW", 500*time.Millisecond),
		}),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: httpCfg.MayCSV("CORS_ORIGINS", []string{"*"}),
		}),
	)...))
	om.MountRoutes(srv.Router())

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("chainfeed consumer stopped")
			stop()
		}
	}()
	go func() {
		if err := producer.Bridge(ctx, b); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("chainfeed producer stopped")
			stop()
		}
	}()
	go func() {
		if err := sm.Scheduler().Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("scheduler stopped")
			stop()
		}
	}()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

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
