package dto

import (
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
)

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// ChannelResponse is a channel without its webservice key
type ChannelResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	BaseURL             string     `json:"base_url"`
	Timezone            string     `json:"timezone"`
	WarehouseCode       string     `json:"warehouse_code,omitempty"`
	Enabled             bool       `json:"enabled"`
	LastOrderImportTime *time.Time `json:"last_order_import_time"`
	LastOrderExportTime *time.Time `json:"last_order_export_time"`
}

// ToChannelResponse converts a channel for output
func ToChannelResponse(c *integration.Channel) ChannelResponse {
	return ChannelResponse{
		ID:                  c.ID,
		Name:                c.Name,
		BaseURL:             c.BaseURL,
		Timezone:            c.Timezone,
		WarehouseCode:       c.WarehouseCode,
		Enabled:             c.Enabled,
		LastOrderImportTime: c.LastOrderImportTime,
		LastOrderExportTime: c.LastOrderExportTime,
	}
}

// JobResponse is one scheduled sync job
type JobResponse struct {
	ID          uuid.UUID               `json:"id"`
	ChannelID   uuid.UUID               `json:"channel_id"`
	Operation   string                  `json:"operation"`
	Status      string                  `json:"status"`
	Error       string                  `json:"error,omitempty"`
	Result      *integration.PassResult `json:"result,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	StartedAt   *time.Time              `json:"started_at,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}
