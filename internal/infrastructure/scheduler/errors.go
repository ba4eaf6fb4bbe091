package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: job queue full")
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")

	// ErrUnsupportedOperation is returned for operations that take arguments
	// a cron entry cannot supply.
	ErrUnsupportedOperation = errors.New("scheduler: operation cannot be scheduled")

	// ErrJobAlreadyQueued is returned while a job for the same channel and
	// operation is pending or running.
	ErrJobAlreadyQueued = errors.New("scheduler: pass already queued")
)
