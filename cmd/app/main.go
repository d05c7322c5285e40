package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spinworks/draw10/internal/audit"
	"github.com/spinworks/draw10/internal/bootstrap"
	"github.com/spinworks/draw10/internal/compensation"
	"github.com/spinworks/draw10/internal/config"
	"github.com/spinworks/draw10/internal/database"
	"github.com/spinworks/draw10/internal/draw"
	"github.com/spinworks/draw10/internal/gameloop"
	"github.com/spinworks/draw10/internal/rebate"
	"github.com/spinworks/draw10/internal/scheduler"
	"github.com/spinworks/draw10/internal/server"
	"github.com/spinworks/draw10/internal/settle"
	"github.com/spinworks/draw10/internal/worker"
)

const (
	shutdownTimeout      = 30 * time.Second
	auditCleanupInterval = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logFile.Close()

	slog.Info(bootstrap.LogMsgStartingEngine,
		"draw_interval_seconds", cfg.DrawIntervalSeconds,
		"max_draws_per_day", cfg.MaxDrawsPerDay)

	dbPool, err := database.NewPool(context.Background(), cfg.GetDBConnString(), cfg.DBMaxConns,
		database.DefaultMaxConnIdleTime, database.DefaultMaxConnLifetime)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	eventBus, publisher, deadLetter, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize event system: %v", err)
	}
	defer deadLetter.Close()

	repos := bootstrap.InitializeRepositories(dbPool)

	auditService := audit.NewService(repos.Audit)
	auditService.Subscribe(eventBus)

	rebateService := rebate.NewService(repos.Agent, cfg.MaxRebateCapBps)

	supervisor := compensation.NewSupervisor(repos.Settlement, publisher, compensation.Config{
		MaxRetries:  cfg.MaxSettleRetries,
		BaseBackoff: cfg.RetryBackoff(),
		StaleRunAge: cfg.StaleRunAge(),
		ScanLimit:   compensation.DefaultScanLimit,
	})

	settler := settle.NewService(repos.Settlement, repos.Period, rebateService,
		publisher, supervisor, cfg.SettleWorkers, cfg.MaxOddsThousandth)
	supervisor.Bind(settler)

	pool := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize)
	pool.Start()

	sched := scheduler.New(pool)
	sched.Schedule(cfg.CompensationScan(), supervisor)
	sched.Schedule(auditCleanupInterval, audit.NewCleanupJob(auditService, cfg.AuditRetentionDays))

	generator := draw.NewGenerator(cfg.AutoDetectThresholdCents)

	loop := gameloop.NewLoop(repos.Period, repos.Policy, generator, settler, publisher, gameloop.Config{
		DrawInterval:   cfg.DrawInterval(),
		SettleTimeout:  cfg.SettleTimeout(),
		MaxDrawsPerDay: cfg.MaxDrawsPerDay,
	})

	loopCtx, loopCancel := context.WithCancel(context.Background())
	go func() {
		if err := loop.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			slog.Error("Game loop exited", "error", err)
		}
	}()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies,
		dbPool, repos.Period, repos.Settlement, repos.Audit, settler)

	go func() {
		slog.Info("Starting HTTP server", "port", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:     srv,
		Scheduler:  sched,
		WorkerPool: pool,
		LoopCancel: loopCancel,
	})
}
