package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/acceptor"
	"github.com/brokerfix/acceptor/internal/adminapi"
	"github.com/brokerfix/acceptor/internal/config"
	"github.com/brokerfix/acceptor/internal/dispatch"
	"github.com/brokerfix/acceptor/internal/logging"
	"github.com/brokerfix/acceptor/internal/port"
	"github.com/brokerfix/acceptor/internal/refprice"
	"github.com/brokerfix/acceptor/internal/session"
	"github.com/brokerfix/acceptor/internal/store"
	"github.com/brokerfix/acceptor/internal/store/cache"
	"github.com/brokerfix/acceptor/internal/store/pg"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Production)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memStore := store.NewMemStore()
	registry := session.NewRegistry()

	var tail port.PersistenceTail
	if cfg.PostgresDSN != "" {
		t, err := pg.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("main: failed to connect persistence tail", zap.Error(err))
		}
		defer t.Close()
		tail = t
	}

	var readCache port.ReadCache
	if cfg.RedisAddr != "" {
		readCache = cache.New(cfg.RedisAddr, cfg.RedisDB, 5*time.Minute)
	}

	d := dispatch.New(memStore, registry, tail, readCache, log)
	events := adminapi.NewEventBus()
	// refs starts empty; an external price-refresh process (out of scope,
	// spec §1) calls Update as it polls market data.
	refs := refprice.NewRegistry()
	admin := adminapi.NewServer(d, events, refs, log)

	sessionCfg := session.Config{
		ServerCompID:          cfg.ServerCompID,
		DefaultHeartbeatS:     cfg.DefaultHeartbeatS,
		IdleTimeoutMultiplier: cfg.IdleTimeoutMultiplier,
	}
	acc := acceptor.New(cfg.ListenHost, cfg.ListenPort, cfg.MaxSessions, sessionCfg, memStore, registry, log)

	go func() {
		log.Info("main: admin HTTP surface listening", zap.Int("port", 8080))
		if err := admin.Run(":8080"); err != nil {
			log.Error("main: admin HTTP surface stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := acc.ListenAndServe(ctx); err != nil {
			log.Fatal("main: acceptor stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("main: shutdown signal received")
	acc.Shutdown(10 * time.Second)
}
