package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/storesync/internal/infrastructure/scheduler"
	"github.com/erp/storesync/internal/interfaces/http/handler"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
	"github.com/erp/storesync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// NewServeCommand creates the daemon command: operator API, metrics and
// the cron scheduler.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator API and the sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg, log := opts.cfg, opts.log

	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("Error releasing resources", zap.Error(err))
		}
	}()

	channels := rt.tx.Repositories().Channels()
	var jobs handler.JobHistory
	var sched *scheduler.SyncScheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			ImportCron:        cfg.Scheduler.ImportCron,
			ExportCron:        cfg.Scheduler.ExportCron,
			ReferenceCron:     cfg.Scheduler.ReferenceCron,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
		}, rt.orchestrator, channels, log)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid scheduler configuration", err)
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		jobs = sched
	}

	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	var tracing []gin.HandlerFunc
	if rt.tracing.Enabled() {
		tracing = middleware.Tracing(cfg.App.Name, rt.tracing.Provider())
	}
	engine := router.NewRouter(router.NewEngine(log, mode, tracing...)).
		Register(handler.NewSyncHandler(rt.orchestrator, channels, jobs)).
		Root(http.MethodGet, "/healthz", handler.NewHealthHandler(rt.db).Healthz).
		RootHandler(http.MethodGet, "/metrics", rt.metrics.Handler()).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return WrapExitError(ExitFailure, "server failed", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
	return nil
}
