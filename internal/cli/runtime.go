package cli

import (
	"context"
	"errors"
	"fmt"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/infrastructure/lock"
	"github.com/erp/storesync/internal/infrastructure/metrics"
	"github.com/erp/storesync/internal/infrastructure/persistence"
	"github.com/erp/storesync/internal/infrastructure/prestashop"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// runtime is the engine wiring shared by the serve and sync commands
type runtime struct {
	db           *persistence.Database
	tx           *persistence.GormTransactionScope
	metrics      *metrics.SyncMetrics
	tracing      *telemetry.TracerProvider
	orchestrator *appintegration.SyncOrchestrator
	closers      []func() error
}

// openDatabase connects to the configured database. sqlite databases are
// migrated in place; postgres relies on `storesync migrate up`.
func openDatabase(opts *RootOptions) (*persistence.Database, error) {
	cfg := opts.cfg
	db, err := persistence.NewDatabase(&cfg.Database, opts.log, cfg.Log.SQLLevel)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, WrapExitError(ExitCommandError, "failed to migrate sqlite database", err)
		}
	}
	return db, nil
}

func newRuntime(opts *RootOptions) (*runtime, error) {
	db, err := openDatabase(opts)
	if err != nil {
		return nil, err
	}
	rt := &runtime{db: db, closers: []func() error{db.Close}}

	rt.tracing, err = telemetry.NewTracerProvider(context.Background(), opts.cfg.Telemetry, opts.cfg.App.Name, opts.log)
	if err != nil {
		_ = rt.Close()
		return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	rt.closers = append(rt.closers, func() error { return rt.tracing.Shutdown(context.Background()) })
	if rt.tracing.Enabled() {
		if err := telemetry.InstrumentGorm(db.DB, rt.tracing.Provider(), opts.cfg.Database.Driver); err != nil {
			_ = rt.Close()
			return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
		}
	}

	locker, closeLocker, err := lock.New(opts.cfg, opts.log)
	if err != nil {
		_ = rt.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create pass locker", err)
	}
	rt.closers = append(rt.closers, closeLocker)

	rt.tx = persistence.NewGormTransactionScope(db.DB)
	rt.metrics = metrics.New()
	rt.orchestrator = appintegration.NewSyncOrchestrator(
		rt.tx,
		prestashop.NewClientFactory(opts.cfg.Remote, opts.log),
		locker,
		opts.log,
		appintegration.WithRecorder(rt.metrics),
		appintegration.WithTracer(rt.tracing.Tracer("github.com/erp/storesync/sync")),
	)

	opts.log.Debug("runtime ready",
		zap.String("database", opts.cfg.Database.Driver),
		zap.String("lock_backend", opts.cfg.Lock.Backend),
		zap.Bool("tracing", rt.tracing.Enabled()),
	)
	return rt, nil
}

// Close releases everything in reverse order of acquisition
func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %w", errors.Join(errs...))
	}
	return nil
}
