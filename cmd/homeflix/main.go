package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/homeflix/internal/blob"
	appconfig "github.com/example/homeflix/internal/config"
	"github.com/example/homeflix/internal/handlers"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/config"
	"github.com/example/homeflix/internal/platform/db"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/platform/logging"
	"github.com/example/homeflix/internal/platform/metrics"
	"github.com/example/homeflix/internal/platform/natsconn"
	"github.com/example/homeflix/internal/platform/run"
	"github.com/example/homeflix/internal/rtstore"
	"github.com/example/homeflix/internal/session"
	"github.com/example/homeflix/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	appCfg, err := appconfig.Load()
	if err != nil {
		log.Error("load app config", zap.Error(err))
		run.Exit(1)
	}

	store, closeStore, err := openStore(context.Background(), appCfg, log)
	if err != nil {
		log.Error("open store", zap.Error(err))
		run.Exit(1)
	}
	defer closeStore()

	blobs, err := blob.NewLocal(appCfg.BlobDir, appCfg.PublicBaseURL+"/blobs")
	if err != nil {
		log.Error("init blob store", zap.Error(err))
		run.Exit(1)
	}

	reg, err := session.NewRegistry(store, log, appCfg.BootstrapPassword)
	if err != nil {
		log.Error("subscribe to store", zap.Error(err))
		run.Exit(1)
	}
	defer reg.Close()

	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	r.Handle("/metrics", metrics.Handler())
	handlers.MountBlobs(r, blobs)
	handlers.Mount(r, handlers.Deps{
		Registry:   reg,
		Store:      store,
		Blobs:      blobs,
		Tokens:     tokens.Service{Secret: appCfg.JWTSecret, SessionTTL: appCfg.SessionTTL},
		Verifier:   auth.JWTVerifier{Secret: appCfg.JWTSecret},
		Log:        log,
		LoginLimit: httpserver.NewRateLimiter(1, 5),
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// openStore builds the configured realtime store backend. Memory keeps
// everything in-process; postgres persists documents and relays change
// notices over NATS so multiple instances see the same pushes.
func openStore(ctx context.Context, appCfg appconfig.AppConfig, log *zap.Logger) (rtstore.Store, func(), error) {
	if appCfg.StoreBackend == "memory" {
		m := rtstore.NewMemory()
		return m, m.Close, nil
	}

	pool, err := db.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	nc, err := natsconn.Connect(natsconn.Options{})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	pg, err := rtstore.NewPostgres(ctx, pool, nc, log)
	if err != nil {
		nc.Close()
		pool.Close()
		return nil, nil, err
	}
	cleanup := func() {
		pg.Close()
		nc.Close()
		pool.Close()
	}
	return pg, cleanup, nil
}
