package scheduler

import (
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
)

// SyncJobStatus represents the status of a scheduled sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	// SyncJobStatusPartial: the pass finished with record exceptions
	SyncJobStatusPartial SyncJobStatus = "PARTIAL"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncJob is one scheduled pass of one channel
type SyncJob struct {
	ID          uuid.UUID
	ChannelID   uuid.UUID
	Operation   integration.Operation
	Status      SyncJobStatus
	Error       string
	Result      *integration.PassResult
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewSyncJob creates a pending job
func NewSyncJob(channelID uuid.UUID, op integration.Operation) *SyncJob {
	return &SyncJob{
		ID:          uuid.New(),
		ChannelID:   channelID,
		Operation:   op,
		Status:      SyncJobStatusPending,
		SubmittedAt: time.Now(),
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the pass result
func (j *SyncJob) Complete(result *integration.PassResult) {
	now := time.Now()
	j.CompletedAt = &now
	j.Result = result
	if result != nil && len(result.Exceptions) > 0 {
		j.Status = SyncJobStatusPartial
		return
	}
	j.Status = SyncJobStatusSuccess
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

func (j *SyncJob) key() string {
	return j.ChannelID.String() + ":" + string(j.Operation)
}
