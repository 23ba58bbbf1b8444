package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/config"
	httpapi "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/service"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/metrics"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/workspace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	probes := map[string]httpapi.Probe{}

	var app *firebase.App
	var fs *firestore.Client
	if cfg.NeedsFirebase() {
		var err error
		app, err = auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		if cfg.Store.Backend == config.StoreBackendFirestore {
			fs, err = app.Firestore(ctx)
			if err != nil {
				return err
			}
			defer fs.Close()
		}
	}

	var db *pgxpool.Pool
	if cfg.Store.Backend == config.StoreBackendPostgres {
		var err error
		db, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      postgres.DSN(&cfg.Database),
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			return err
		}
		defer db.Close()
		probes["db"] = db.Ping
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	store, err := bootstrap.NewEmployeeStore(&cfg.Store, bootstrap.StoreDeps{
		Firestore: fs,
		DB:        db,
		Redis:     rdb,
		Metrics:   metrics.NewStoreMetrics(reg),
	})
	if err != nil {
		return err
	}
	employees := service.NewEmployeeService(store, nil, logger)

	backend, err := bootstrap.NewAuthBackend(ctx, cfg, app)
	if err != nil {
		return err
	}

	registry := workspace.NewRegistry(workspace.Options{
		IdleTTL:     cfg.Workspace.IdleTTL,
		Backend:     backend,
		Tokens:      bootstrap.NewTokenStore(rdb),
		TokenTTL:    cfg.Auth.TokenTTL,
		SignInRate:  cfg.Auth.SignInRate,
		SignInBurst: cfg.Auth.SignInBurst,
		Employees:   employees,
		Metrics:     metrics.NewWorkspaceMetrics(reg),
		Logger:      logger,
	})
	defer registry.Close()

	sweeper, err := workspace.NewSweeper(registry, cfg.Workspace.SweepSpec, logger)
	if err != nil {
		return err
	}
	sweeper.Start()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		SecureCookie:   cfg.App.Environment == "production",
		Registry:       registry,
		Employees:      employees,
		Verifier:       backend,
		Probes:         probes,
		Gatherer:       reg,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("auth_backend", cfg.Auth.Backend),
			zap.String("employee_store", cfg.Store.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return bootstrap.Shutdown(shutdownCtx, srv, sweeper, registry)
}
