package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// SyncRunner runs the sync passes of a channel
type SyncRunner interface {
	RunImport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	RunExport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	ImportReferenceData(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
}

// ChannelLister lists the channels a tick fans out to
type ChannelLister interface {
	ListEnabled(ctx context.Context) ([]integration.Channel, error)
}

// ---------------------------------------------------------------------------
// SyncSchedulerConfig
// ---------------------------------------------------------------------------

// SyncSchedulerConfig holds the cron schedules and worker pool settings.
// Schedules use the six-field cron format with seconds; an empty schedule
// disables that operation.
type SyncSchedulerConfig struct {
	ImportCron        string
	ExportCron        string
	ReferenceCron     string
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	QueueSize         int
	MaxHistory        int
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize < 0 || c.MaxHistory < 0 {
		return ErrInvalidConfig
	}
	return nil
}

func (c *SyncSchedulerConfig) schedules() map[integration.Operation]string {
	return map[integration.Operation]string{
		integration.OperationImportOrders:        c.ImportCron,
		integration.OperationExportOrders:        c.ExportCron,
		integration.OperationImportReferenceData: c.ReferenceCron,
	}
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler fans cron ticks out to every enabled channel and runs the
// resulting passes on a bounded worker pool. A channel never has two jobs
// of the same operation queued; the pass lock still guards against other
// processes.
type SyncScheduler struct {
	config   SyncSchedulerConfig
	runner   SyncRunner
	channels ChannelLister
	logger   *zap.Logger

	cron      *cron.Cron
	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	inflightMu sync.Mutex
	inflight   map[string]bool

	historyMu sync.RWMutex
	history   []*SyncJob
}

// NewSyncScheduler creates a scheduler. Cron specs are parsed here so a
// bad schedule fails at startup.
func NewSyncScheduler(config SyncSchedulerConfig, runner SyncRunner, channels ChannelLister, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.QueueSize == 0 {
		config.QueueSize = 100
	}
	if config.MaxHistory == 0 {
		config.MaxHistory = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SyncScheduler{
		config:   config,
		runner:   runner,
		channels: channels,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{logger}))),
		jobs:     make(chan *SyncJob, config.QueueSize),
		inflight: make(map[string]bool),
		history:  make([]*SyncJob, 0, config.MaxHistory),
	}

	for op, spec := range config.schedules() {
		if spec == "" {
			continue
		}
		op := op
		if _, err := s.cron.AddFunc(spec, func() { s.Tick(op) }); err != nil {
			return nil, fmt.Errorf("%w: %s schedule %q: %v", ErrInvalidConfig, op, spec, err)
		}
	}
	return s, nil
}

// Start starts the worker pool and the cron clock
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	s.cron.Start()

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("schedules", len(s.cron.Entries())),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop stops the cron clock and waits for running jobs, up to ctx
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	<-cronDone.Done()

	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// Tick submits a job of the operation for every enabled channel
func (s *SyncScheduler) Tick(op integration.Operation) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	channels, err := s.channels.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to list channels for scheduled sync",
			zap.String("operation", string(op)),
			zap.Error(err),
		)
		return
	}
	for _, ch := range channels {
		err := s.SubmitJob(NewSyncJob(ch.ID, op))
		switch err {
		case nil:
		case ErrJobAlreadyQueued:
			s.logger.Debug("Sync job already queued",
				zap.String("channel_id", ch.ID.String()),
				zap.String("operation", string(op)),
			)
		default:
			s.logger.Warn("Failed to submit scheduled sync job",
				zap.String("channel_id", ch.ID.String()),
				zap.String("operation", string(op)),
				zap.Error(err),
			)
		}
	}
}

// SubmitJob queues a job for execution
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	switch job.Operation {
	case integration.OperationImportOrders, integration.OperationExportOrders, integration.OperationImportReferenceData:
	default:
		return ErrUnsupportedOperation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if s.inflight[job.key()] {
		return ErrJobAlreadyQueued
	}

	select {
	case s.jobs <- job:
		s.inflight[job.key()] = true
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("channel_id", job.ChannelID.String()),
			zap.String("operation", string(job.Operation)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	defer func() {
		s.inflightMu.Lock()
		delete(s.inflight, job.key())
		s.inflightMu.Unlock()
		s.addToHistory(job)
	}()

	job.Start()
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	jobCtx, _ = logger.WithPassID(jobCtx, s.logger, job.ID.String())

	result, err := s.run(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		fields := []zap.Field{
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("channel_id", job.ChannelID.String()),
			zap.String("operation", string(job.Operation)),
			zap.Error(err),
		}
		if errors.Is(err, integration.ErrPassLocked) {
			s.logger.Warn("Sync job skipped, pass already running", fields...)
			return
		}
		s.logger.Error("Sync job failed", fields...)
		return
	}

	job.Complete(result)
	s.logger.Info("Sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("channel_id", job.ChannelID.String()),
		zap.String("operation", string(job.Operation)),
		zap.String("status", string(job.Status)),
	)
}

func (s *SyncScheduler) run(ctx context.Context, job *SyncJob) (*integration.PassResult, error) {
	switch job.Operation {
	case integration.OperationImportOrders:
		return s.runner.RunImport(ctx, job.ChannelID)
	case integration.OperationExportOrders:
		return s.runner.RunExport(ctx, job.ChannelID)
	case integration.OperationImportReferenceData:
		return s.runner.ImportReferenceData(ctx, job.ChannelID)
	}
	return nil, ErrUnsupportedOperation
}

func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{job}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// GetJobHistory returns recent jobs, newest first
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// cronLogger adapts zap to the cron.Logger interface
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
