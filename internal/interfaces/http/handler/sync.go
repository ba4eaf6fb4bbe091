package handler

import (
	"context"
	"strconv"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/scheduler"
	"github.com/erp/storesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyncService runs the sync operations of a channel
type SyncService interface {
	RunImport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	RunExport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	ImportReferenceData(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	ImportLanguages(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	ImportOrderStates(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)
	TestConnection(ctx context.Context, channelID uuid.UUID) error
}

// ChannelReader reads configured channels
type ChannelReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error)
	List(ctx context.Context) ([]integration.Channel, error)
}

// JobHistory lists recently finished scheduled jobs
type JobHistory interface {
	GetJobHistory(limit int) []*scheduler.SyncJob
}

// SyncHandler exposes the sync operations to operators
type SyncHandler struct {
	BaseHandler
	sync     SyncService
	channels ChannelReader
	jobs     JobHistory
}

// NewSyncHandler creates a SyncHandler. jobs may be nil when the
// scheduler is disabled.
func NewSyncHandler(sync SyncService, channels ChannelReader, jobs JobHistory) *SyncHandler {
	return &SyncHandler{sync: sync, channels: channels, jobs: jobs}
}

// RegisterRoutes registers the channel and job routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/channels")
	channels.GET("", h.ListChannels)
	channels.GET("/:id", h.GetChannel)
	channels.POST("/:id/test-connection", h.TestConnection)
	channels.POST("/:id/import-languages", h.pass(h.sync.ImportLanguages))
	channels.POST("/:id/import-order-states", h.pass(h.sync.ImportOrderStates))
	channels.POST("/:id/import-reference-data", h.pass(h.sync.ImportReferenceData))
	channels.POST("/:id/import-orders", h.pass(h.sync.RunImport))
	channels.POST("/:id/export-orders", h.pass(h.sync.RunExport))

	if h.jobs != nil {
		rg.GET("/jobs", h.ListJobs)
	}
}

// ListChannels lists every channel
// GET /api/v1/channels
func (h *SyncHandler) ListChannels(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]dto.ChannelResponse, 0, len(channels))
	for i := range channels {
		out = append(out, dto.ToChannelResponse(&channels[i]))
	}
	h.Success(c, out)
}

// GetChannel returns one channel with its sync cursors
// GET /api/v1/channels/:id
func (h *SyncHandler) GetChannel(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	channel, err := h.channels.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToChannelResponse(channel))
}

// TestConnection checks the webservice URL and key of a channel
// POST /api/v1/channels/:id/test-connection
func (h *SyncHandler) TestConnection(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	if err := h.sync.TestConnection(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Connection successful"})
}

// pass adapts a pass operation to a handler returning its PassResult.
// Record exceptions do not fail the request.
func (h *SyncHandler) pass(run func(context.Context, uuid.UUID) (*integration.PassResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.channelID(c)
		if !ok {
			return
		}
		result, err := run(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	}
}

// ListJobs returns the latest scheduled jobs, newest first
// GET /api/v1/jobs?limit=20
func (h *SyncHandler) ListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	jobs := h.jobs.GetJobHistory(limit)
	out := make([]dto.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, dto.JobResponse{
			ID:          j.ID,
			ChannelID:   j.ChannelID,
			Operation:   string(j.Operation),
			Status:      string(j.Status),
			Error:       j.Error,
			Result:      j.Result,
			SubmittedAt: j.SubmittedAt,
			StartedAt:   j.StartedAt,
			CompletedAt: j.CompletedAt,
		})
	}
	h.Success(c, out)
}
