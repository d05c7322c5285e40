package bootstrap

import (
	"context"
	"log/slog"

	"github.com/spinworks/draw10/internal/scheduler"
	"github.com/spinworks/draw10/internal/server"
	"github.com/spinworks/draw10/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server     *server.Server
	Scheduler  *scheduler.Scheduler
	WorkerPool *worker.Pool
	LoopCancel context.CancelFunc
}

// GracefulShutdown performs graceful shutdown of all application components.
// Order matters: the HTTP server stops accepting new requests first, then the
// game loop stops producing work, then the scheduler stops enqueueing jobs,
// and finally the worker pool drains in-flight jobs.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	if components.LoopCancel != nil {
		components.LoopCancel()
	}

	slog.Info(LogMsgShuttingDownScheduler)
	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	slog.Info(LogMsgServerStopped)
}
